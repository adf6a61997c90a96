package committer

import (
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/assert"
)

func TestCommitPlan(t *testing.T) {
	plan := NewPlan()
	assert.True(t, plan.IsEmpty())

	plan.Add(nil)
	assert.True(t, plan.IsEmpty())

	first := spanner.Delete("products", spanner.Key{"p-1"})
	second := spanner.InsertOrUpdate("product_count_totals", []string{"namespace", "total"}, []any{"v2_active", int64(3)})
	plan.Add(first)
	plan.AddMultiple([]*spanner.Mutation{nil, second})

	assert.Equal(t, 2, plan.Count())
	assert.Equal(t, []*spanner.Mutation{first, second}, plan.Mutations())
}
