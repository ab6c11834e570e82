package filter

import (
	"strings"

	"github.com/sqlscope/sqlscope/internal/model"
)

// Operator represents a comparison operator in a filter condition.
type Operator string

const (
	Contains    Operator = "contains"
	NotContains Operator = "not_contains"
	Equals      Operator = "equals"
	NotEquals   Operator = "not_equals"
	StartsWith  Operator = "starts_with"
	EndsWith    Operator = "ends_with"
	GreaterThan Operator = "gt"
	GreaterOrEq Operator = "gte"
	LessThan    Operator = "lt"
	LessOrEq    Operator = "lte"
)

// stringOperators and orderedOperators are the legal operator sets per
// column type. Datetime columns share the ordered set: their values are
// coerced to timestamps and compared numerically.
var (
	stringOperators = map[Operator]bool{
		Contains: true, NotContains: true, Equals: true,
		NotEquals: true, StartsWith: true, EndsWith: true,
	}
	orderedOperators = map[Operator]bool{
		Equals: true, NotEquals: true,
		GreaterThan: true, GreaterOrEq: true,
		LessThan: true, LessOrEq: true,
	}
)

// Condition is a single typed comparison rule: column, operator, and a
// literal value. The JSON tags define the persisted form of a filter set.
type Condition struct {
	Column   string   `json:"column"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// OperatorsFor returns the legal operator set for a column type.
func OperatorsFor(t model.ColumnType) map[Operator]bool {
	if t == model.TypeString {
		return stringOperators
	}
	return orderedOperators
}

// DefaultOperator returns the operator a condition falls back to when
// its current operator is not legal for the column's type, e.g. after
// the column reference was edited to a column of a different type.
func DefaultOperator(t model.ColumnType) Operator {
	switch t {
	case model.TypeString:
		return Contains
	case model.TypeDateTime:
		return GreaterOrEq
	default:
		return Equals
	}
}

// Validate checks the condition's column against the known column set
// and resets an operator that is illegal for the column's type to the
// type's default. Returns false for an unknown column.
func (c *Condition) Validate() bool {
	t, ok := model.ColumnTypeOf(c.Column)
	if !ok {
		return false
	}
	if !OperatorsFor(t)[c.Operator] {
		c.Operator = DefaultOperator(t)
	}
	return true
}

// Normalize prepares a filter set for evaluation: each condition's value
// is trimmed, conditions with empty trimmed values are dropped, and
// conditions referencing unknown columns are dropped. The input slice is
// not modified.
func Normalize(conds []Condition) []Condition {
	out := make([]Condition, 0, len(conds))
	for _, c := range conds {
		c.Value = strings.TrimSpace(c.Value)
		if c.Value == "" {
			continue
		}
		if !c.Validate() {
			continue
		}
		out = append(out, c)
	}
	return out
}
