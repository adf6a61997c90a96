// Package query builds parameterized Spanner SQL statements.
package query

import (
	"fmt"
	"maps"
	"strings"

	"cloud.google.com/go/spanner"
)

// Direction represents ORDER BY direction.
type Direction int

const (
	// Asc represents ascending order.
	Asc Direction = iota
	// Desc represents descending order.
	Desc
)

type orderTerm struct {
	expr string
	dir  Direction
}

// Builder constructs SELECT statements for Cloud Spanner. Conditions get
// positional parameter names (@p0, @p1, ...); expressions that need a
// value in several places (SEARCH and SCORE over the same text) use a
// named parameter set with Param.
type Builder struct {
	table        string
	hint         string
	selectCols   []string
	whereClauses []Condition
	orderBy      []orderTerm
	named        map[string]any
	limitVal     int64
	offsetVal    int64
}

// From creates a new Builder for the specified table.
func From(table string) *Builder {
	return &Builder{
		table:        table,
		selectCols:   []string{},
		whereClauses: []Condition{},
		named:        map[string]any{},
	}
}

// Select specifies the columns to retrieve.
func (b *Builder) Select(columns ...string) *Builder {
	nb := b.clone()
	nb.selectCols = append(nb.selectCols, columns...)
	return nb
}

// ForceIndex pins the statement to a secondary index.
func (b *Builder) ForceIndex(index string) *Builder {
	nb := b.clone()
	nb.hint = "@{FORCE_INDEX=" + index + "}"
	return nb
}

// Where adds a WHERE condition.
// Multiple calls are combined with AND logic.
func (b *Builder) Where(condition Condition) *Builder {
	nb := b.clone()
	nb.whereClauses = append(nb.whereClauses, condition)
	return nb
}

// Param binds a named parameter referenced as @name in Raw conditions or
// ORDER BY expressions.
func (b *Builder) Param(name string, value any) *Builder {
	nb := b.clone()
	nb.named[name] = value
	return nb
}

// OrderBy appends a sort term. Earlier terms take precedence.
func (b *Builder) OrderBy(expr string, direction Direction) *Builder {
	nb := b.clone()
	nb.orderBy = append(nb.orderBy, orderTerm{expr: expr, dir: direction})
	return nb
}

// Limit sets the maximum number of rows to return.
func (b *Builder) Limit(limit int64) *Builder {
	nb := b.clone()
	nb.limitVal = limit
	return nb
}

// Offset sets the number of rows to skip.
func (b *Builder) Offset(offset int64) *Builder {
	nb := b.clone()
	nb.offsetVal = offset
	return nb
}

// Count returns a COUNT(*) builder with the same FROM and WHERE clauses.
func (b *Builder) Count() *Builder {
	nb := b.clone()
	nb.selectCols = []string{"COUNT(*)"}
	nb.limitVal = 0
	nb.offsetVal = 0
	nb.orderBy = nil
	return nb
}

// Build constructs the final spanner.Statement with SQL and parameters.
func (b *Builder) Build() spanner.Statement {
	var sql strings.Builder
	params := make(map[string]any, len(b.named)+2)
	maps.Copy(params, b.named)

	sql.WriteString("SELECT ")
	if len(b.selectCols) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(b.selectCols, ", "))
	}

	sql.WriteString(" FROM ")
	sql.WriteString(b.table)
	sql.WriteString(b.hint)

	if len(b.whereClauses) > 0 {
		sql.WriteString(" WHERE ")
		parts := make([]string, 0, len(b.whereClauses))
		paramIndex := 0
		for _, condition := range b.whereClauses {
			fragment, condParams := condition.SQL(paramIndex)
			parts = append(parts, fragment)
			maps.Copy(params, condParams)
			paramIndex += len(condParams)
		}
		sql.WriteString(strings.Join(parts, " AND "))
	}

	if len(b.orderBy) > 0 {
		sql.WriteString(" ORDER BY ")
		terms := make([]string, 0, len(b.orderBy))
		for _, t := range b.orderBy {
			if t.dir == Desc {
				terms = append(terms, t.expr+" DESC")
			} else {
				terms = append(terms, t.expr+" ASC")
			}
		}
		sql.WriteString(strings.Join(terms, ", "))
	}

	if b.limitVal > 0 {
		sql.WriteString(" LIMIT @limit")
		params["limit"] = b.limitVal
	}

	if b.offsetVal > 0 {
		sql.WriteString(" OFFSET @offset")
		params["offset"] = b.offsetVal
	}

	return spanner.Statement{
		SQL:    sql.String(),
		Params: params,
	}
}

func (b *Builder) clone() *Builder {
	nb := *b
	nb.selectCols = append([]string(nil), b.selectCols...)
	nb.whereClauses = append([]Condition(nil), b.whereClauses...)
	nb.orderBy = append([]orderTerm(nil), b.orderBy...)
	nb.named = maps.Clone(b.named)
	return &nb
}

// String returns a human-readable representation for debugging.
func (b *Builder) String() string {
	stmt := b.Build()
	return fmt.Sprintf("SQL: %s\nParams: %v", stmt.SQL, stmt.Params)
}
