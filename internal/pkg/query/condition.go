package query

import (
	"fmt"
	"strings"
)

// Condition represents a WHERE clause condition.
type Condition interface {
	// SQL returns the fragment and its parameters. paramIndex is the first
	// free positional parameter number.
	SQL(paramIndex int) (string, map[string]any)
}

type eqCondition struct {
	field string
	value any
}

// Eq creates an equality condition: Eq("status", "active") is "status = @p0".
func Eq(field string, value any) Condition {
	return &eqCondition{field: field, value: value}
}

func (c *eqCondition) SQL(paramIndex int) (string, map[string]any) {
	name := fmt.Sprintf("p%d", paramIndex)
	return fmt.Sprintf("%s = @%s", c.field, name), map[string]any{name: c.value}
}

type inCondition struct {
	field  string
	values any
}

// In matches any element of values, which must be a slice Spanner can bind
// as an ARRAY: In("status", []string{"draft", "active"}).
func In(field string, values any) Condition {
	return &inCondition{field: field, values: values}
}

func (c *inCondition) SQL(paramIndex int) (string, map[string]any) {
	name := fmt.Sprintf("p%d", paramIndex)
	return fmt.Sprintf("%s IN UNNEST(@%s)", c.field, name), map[string]any{name: c.values}
}

// IsNull creates a WHERE condition for NULL checks.
func IsNull(field string) Condition {
	return &nullCondition{field: field}
}

// IsNotNull creates a WHERE condition for NOT NULL checks.
func IsNotNull(field string) Condition {
	return &nullCondition{field: field, negate: true}
}

type nullCondition struct {
	field  string
	negate bool
}

func (c *nullCondition) SQL(int) (string, map[string]any) {
	if c.negate {
		return c.field + " IS NOT NULL", map[string]any{}
	}
	return c.field + " IS NULL", map[string]any{}
}

type rawCondition struct {
	expr string
	args []any
}

// Raw wraps an arbitrary boolean expression. Each ? in expr is replaced by
// the next positional parameter, bound to the matching arg. Named
// parameters (@name) pass through untouched; bind them with Builder.Param.
func Raw(expr string, args ...any) Condition {
	return &rawCondition{expr: expr, args: args}
}

func (c *rawCondition) SQL(paramIndex int) (string, map[string]any) {
	params := make(map[string]any, len(c.args))
	var sb strings.Builder
	n := 0
	for _, r := range c.expr {
		if r == '?' && n < len(c.args) {
			name := fmt.Sprintf("p%d", paramIndex+n)
			sb.WriteString("@" + name)
			params[name] = c.args[n]
			n++
			continue
		}
		sb.WriteRune(r)
	}
	return "(" + sb.String() + ")", params
}
