package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Select(t *testing.T) {
	tests := []struct {
		name    string
		builder *Builder
		sql     string
	}{
		{"columns", From("products").Select("product_id", "name", "slug"), "SELECT product_id, name, slug FROM products"},
		{"all columns", From("categories"), "SELECT * FROM categories"},
		{"repeated select", From("products").Select("product_id").Select("status"), "SELECT product_id, status FROM products"},
		{"forced index", From("products").Select("product_id").ForceIndex("idx_products_slug"), "SELECT product_id FROM products@{FORCE_INDEX=idx_products_slug}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := tt.builder.Build()
			assert.Equal(t, tt.sql, stmt.SQL)
			assert.Empty(t, stmt.Params)
		})
	}
}

func TestBuilder_WhereConditions(t *testing.T) {
	stmt := From("products").
		Select("product_id").
		Where(Eq("category_id", "cat-sofas")).
		Where(Eq("status", "active")).
		Where(IsNotNull("published_at")).
		Build()

	assert.Equal(t, "SELECT product_id FROM products WHERE category_id = @p0 AND status = @p1 AND published_at IS NOT NULL", stmt.SQL)
	assert.Equal(t, map[string]any{"p0": "cat-sofas", "p1": "active"}, stmt.Params)
}

func TestBuilder_InCondition(t *testing.T) {
	ids := []string{"cat-a", "cat-b"}
	stmt := From("products").
		Select("product_id").
		Where(Eq("status", "active")).
		Where(In("category_id", ids)).
		Build()

	assert.Equal(t, "SELECT product_id FROM products WHERE status = @p0 AND category_id IN UNNEST(@p1)", stmt.SQL)
	assert.Equal(t, ids, stmt.Params["p1"])
}

func TestBuilder_RawKeysetCondition(t *testing.T) {
	at := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	stmt := From("products").
		Select("product_id").
		Where(Eq("status", "draft")).
		Where(Raw("created_at < ? OR (created_at = ? AND product_id < ?)", at, at, "p-9")).
		OrderBy("created_at", Desc).
		OrderBy("product_id", Desc).
		Limit(21).
		Build()

	assert.Equal(t,
		"SELECT product_id FROM products WHERE status = @p0 AND (created_at < @p1 OR (created_at = @p2 AND product_id < @p3)) ORDER BY created_at DESC, product_id DESC LIMIT @limit",
		stmt.SQL)
	assert.Equal(t, map[string]any{
		"p0":    "draft",
		"p1":    at,
		"p2":    at,
		"p3":    "p-9",
		"limit": int64(21),
	}, stmt.Params)
}

func TestBuilder_NamedParams(t *testing.T) {
	stmt := From("products").
		Select("product_id").
		Where(Raw("SEARCH(name_tokens, @q) OR SEARCH(body_tokens, @q)")).
		Where(Eq("status", "active")).
		Param("q", "oak table").
		OrderBy("SCORE(name_tokens, @q) * 2 + SCORE(body_tokens, @q)", Desc).
		Limit(50).
		Build()

	assert.Equal(t,
		"SELECT product_id FROM products WHERE (SEARCH(name_tokens, @q) OR SEARCH(body_tokens, @q)) AND status = @p0 ORDER BY SCORE(name_tokens, @q) * 2 + SCORE(body_tokens, @q) DESC LIMIT @limit",
		stmt.SQL)
	assert.Equal(t, map[string]any{"q": "oak table", "p0": "active", "limit": int64(50)}, stmt.Params)
}

func TestBuilder_LimitAndOffset(t *testing.T) {
	stmt := From("outbox_events").
		Select("event_id").
		OrderBy("created_at", Asc).
		Limit(10).
		Offset(20).
		Build()

	assert.Equal(t, "SELECT event_id FROM outbox_events ORDER BY created_at ASC LIMIT @limit OFFSET @offset", stmt.SQL)
	assert.Equal(t, map[string]any{"limit": int64(10), "offset": int64(20)}, stmt.Params)
}

func TestBuilder_Count(t *testing.T) {
	builder := From("product_count_entries").
		Select("namespace", "sort_key", "product_id").
		Where(Eq("namespace", "v2_active")).
		OrderBy("sort_key", Desc).
		Limit(50)

	countStmt := builder.Count().Build()
	assert.Equal(t, "SELECT COUNT(*) FROM product_count_entries WHERE namespace = @p0", countStmt.SQL)
	assert.Equal(t, map[string]any{"p0": "v2_active"}, countStmt.Params)

	assert.Contains(t, builder.Build().SQL, "ORDER BY sort_key DESC LIMIT @limit")
}

func TestBuilder_Immutability(t *testing.T) {
	base := From("products").Select("product_id").Param("q", "lamp")

	stmt1 := base.Where(Eq("status", "active")).OrderBy("created_at", Desc).Build()
	stmt2 := base.Where(Eq("category_id", "cat-1")).Param("q", "chair").Build()

	assert.Contains(t, stmt1.SQL, "status = @p0")
	assert.NotContains(t, stmt1.SQL, "category_id")
	assert.Equal(t, "lamp", stmt1.Params["q"])

	assert.Contains(t, stmt2.SQL, "category_id = @p0")
	assert.NotContains(t, stmt2.SQL, "ORDER BY")
	assert.Equal(t, "chair", stmt2.Params["q"])

	assert.Equal(t, "SELECT product_id FROM products", base.Build().SQL)
}

func TestConditions(t *testing.T) {
	tests := []struct {
		name   string
		cond   Condition
		index  int
		sql    string
		params map[string]any
	}{
		{"eq", Eq("slug", "oak-table"), 0, "slug = @p0", map[string]any{"p0": "oak-table"}},
		{"eq offset index", Eq("status", "archived"), 5, "status = @p5", map[string]any{"p5": "archived"}},
		{"is null", IsNull("parent_id"), 0, "parent_id IS NULL", map[string]any{}},
		{"is not null", IsNotNull("parent_id"), 3, "parent_id IS NOT NULL", map[string]any{}},
		{"raw without args", Raw("featured = TRUE"), 0, "(featured = TRUE)", map[string]any{}},
		{"raw extra marks kept", Raw("a = ? AND b = '?'", 1), 2, "(a = @p2 AND b = '?')", map[string]any{"p2": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params := tt.cond.SQL(tt.index)
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestBuilder_String(t *testing.T) {
	str := From("products").Select("product_id").Where(Eq("status", "active")).String()
	require.NotEmpty(t, str)
	assert.Contains(t, str, "SQL:")
	assert.Contains(t, str, "Params:")
}
