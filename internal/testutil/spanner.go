package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/require"
)

// Tables in child-before-parent order.
var tables = []string{
	"product_variants",
	"reviews",
	"products",
	"categories",
	"product_count_entries",
	"product_count_totals",
	"outbox_events",
}

// SetupSpannerTest connects to the emulator database and truncates it.
// The test is skipped when SPANNER_EMULATOR_HOST is not set.
func SetupSpannerTest(t *testing.T) (*spanner.Client, func()) {
	t.Helper()

	if os.Getenv("SPANNER_EMULATOR_HOST") == "" {
		t.Skip("SPANNER_EMULATOR_HOST not set")
	}

	ctx := context.Background()
	client, err := spanner.NewClient(ctx, GetTestSpannerDB())
	require.NoError(t, err, "failed to create Spanner client")

	CleanDatabase(t, client)

	cleanup := func() {
		CleanDatabase(t, client)
		client.Close()
	}
	return client, cleanup
}

// GetTestSpannerDB returns SPANNER_TEST_DATABASE or the emulator default.
func GetTestSpannerDB() string {
	if db := os.Getenv("SPANNER_TEST_DATABASE"); db != "" {
		return db
	}
	return "projects/test-project/instances/test-instance/databases/catalog-test"
}

// CleanDatabase deletes every row from every catalog table.
func CleanDatabase(t *testing.T, client *spanner.Client) {
	t.Helper()

	mutations := make([]*spanner.Mutation, 0, len(tables))
	for _, table := range tables {
		mutations = append(mutations, spanner.Delete(table, spanner.AllKeys()))
	}
	_, err := client.Apply(context.Background(), mutations)
	require.NoError(t, err, "failed to clean database")
}

// AssertRowCount asserts the number of rows in a table.
func AssertRowCount(t *testing.T, client *spanner.Client, table string, expected int) {
	t.Helper()

	iter := client.Single().Query(context.Background(), spanner.Statement{
		SQL: fmt.Sprintf("SELECT COUNT(*) FROM %s", table),
	})
	defer iter.Stop()

	row, err := iter.Next()
	require.NoError(t, err, "failed to query row count")

	var count int64
	require.NoError(t, row.Columns(&count), "failed to parse count")
	require.Equal(t, int64(expected), count, "unexpected row count in table %s", table)
}
