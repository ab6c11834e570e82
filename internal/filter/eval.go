package filter

import (
	"math"
	"strconv"
	"strings"

	"github.com/sqlscope/sqlscope/internal/model"
)

// MatchesText reports whether the event matches a free-text search.
// The needle is compared case-insensitively as a substring of the full
// SQL text, the current statement, the database name, the login name,
// or the program name. An empty needle matches everything.
func MatchesText(e *model.QueryEvent, needle string) bool {
	if needle == "" {
		return true
	}
	needle = strings.ToLower(needle)
	for _, hay := range []string{
		e.SQLText, e.CurrentStatement, e.DatabaseName, e.LoginName, e.ProgramName,
	} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

// Matches reports whether the event passes every condition in the set
// (AND semantics). The set is expected to be normalized; an empty set
// accepts every event.
func Matches(e *model.QueryEvent, conds []Condition) bool {
	for _, c := range conds {
		if !matchesCondition(e, c) {
			return false
		}
	}
	return true
}

func matchesCondition(e *model.QueryEvent, c Condition) bool {
	t, ok := model.ColumnTypeOf(c.Column)
	if !ok {
		return false
	}
	fieldVal := model.ColumnValue(e, c.Column)

	switch t {
	case model.TypeString:
		return compareString(fieldVal, c.Operator, c.Value)
	case model.TypeNumber:
		// Fail closed: a side that doesn't parse to a finite number
		// rejects the event.
		a, ok1 := parseFinite(fieldVal)
		b, ok2 := parseFinite(c.Value)
		if !ok1 || !ok2 {
			return false
		}
		return compareOrdered(a, c.Operator, b)
	case model.TypeDateTime:
		a, ok1 := ParseTimestamp(fieldVal)
		b, ok2 := ParseTimestamp(c.Value)
		if !ok1 || !ok2 {
			return false
		}
		return compareOrdered(float64(a.UnixNano()), c.Operator, float64(b.UnixNano()))
	default:
		return false
	}
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func compareString(fieldVal string, op Operator, condVal string) bool {
	a := strings.ToLower(fieldVal)
	b := strings.ToLower(condVal)
	switch op {
	case Contains:
		return strings.Contains(a, b)
	case NotContains:
		return !strings.Contains(a, b)
	case Equals:
		return a == b
	case NotEquals:
		return a != b
	case StartsWith:
		return strings.HasPrefix(a, b)
	case EndsWith:
		return strings.HasSuffix(a, b)
	default:
		return false
	}
}

func compareOrdered(a float64, op Operator, b float64) bool {
	switch op {
	case Equals:
		return a == b
	case NotEquals:
		return a != b
	case GreaterThan:
		return a > b
	case GreaterOrEq:
		return a >= b
	case LessThan:
		return a < b
	case LessOrEq:
		return a <= b
	default:
		return false
	}
}
