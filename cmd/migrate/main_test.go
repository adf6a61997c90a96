package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDatabasePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    target
		wantErr bool
	}{
		{
			name: "full path",
			path: "projects/p1/instances/i1/databases/catalog-db",
			want: target{project: "p1", instance: "i1", database: "catalog-db"},
		},
		{name: "missing database", path: "projects/p1/instances/i1", wantErr: true},
		{name: "wrong segment", path: "projects/p1/clusters/i1/databases/d", wantErr: true},
		{name: "empty", path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDatabasePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.path, got.databasePath())
		})
	}
}

func TestSplitDDLStatements(t *testing.T) {
	content := `-- header
CREATE TABLE a (
  id STRING(36) NOT NULL,
) PRIMARY KEY (id);

-- index
CREATE INDEX idx_a ON a(id);
`

	got := splitDDLStatements(content)

	require.Len(t, got, 2)
	assert.Equal(t, "CREATE TABLE a (\nid STRING(36) NOT NULL,\n) PRIMARY KEY (id)", got[0])
	assert.Equal(t, "CREATE INDEX idx_a ON a(id)", got[1])
}
