// Package condition implements spec.md §3's filter condition and §4.2's
// evaluation rules: value coercion, the six comparison operators, and the
// windowed-threshold variant with tolerance.
package condition

import (
	"strconv"
	"strings"

	"github.com/cuemby/relay/pkg/event"
	"github.com/cuemby/relay/pkg/wire"
)

// windowedTolerance is the absolute tolerance used for EQUAL/NOT_EQUAL on an
// aggregated windowed value, to absorb floating-point aggregation rounding
// (spec §4.2).
const windowedTolerance = 1e-2

// Condition is one field/operator/value triple. Value is coerced once, at
// construction time, into a cached numeric representation when the field
// is one of event.NumericFields or the condition is windowed — the design note in spec §9 asks for this
// instead of re-parsing the string on every evaluation. A coercion failure
// is never fatal: it is simply recorded as "not numeric" and later
// evaluation degrades to false, per spec §4.2/§7.
type Condition struct {
	FieldName  string
	Operator   wire.Operator
	Value      string
	IsWindowed bool

	numeric   float64
	isNumeric bool
}

// New builds a Condition, coercing and caching Value up front.
func New(fieldName string, op wire.Operator, value string, windowed bool) Condition {
	c := Condition{FieldName: fieldName, Operator: op, Value: value, IsWindowed: windowed}
	if event.NumericFields[fieldName] || windowed {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			c.numeric = f
			c.isNumeric = true
		}
	}
	return c
}

// Evaluate applies a non-windowed condition to an already-extracted field
// value. The caller is responsible for calling event.Extract first and
// passing ok=false straight through as a non-match (spec §4.2 step 1).
func Evaluate(fieldValue event.Value, fieldOK bool, cond Condition) bool {
	if !fieldOK {
		return false
	}

	if event.NumericFields[cond.FieldName] {
		if !fieldValue.IsNumeric || !cond.isNumeric {
			return false
		}
		return compareNumeric(fieldValue.Numeric, cond.numeric, cond.Operator)
	}

	return compareString(fieldValue.Raw, cond.Value, cond.Operator)
}

// EvaluateWindowed applies a windowed condition to a freshly fired
// aggregate (spec §4.2): EQUAL/NOT_EQUAL use an absolute tolerance,
// the ordering operators compare directly.
func EvaluateWindowed(aggregate float64, cond Condition) bool {
	if !cond.isNumeric {
		return false
	}

	switch cond.Operator {
	case wire.OpEqual:
		return withinTolerance(aggregate, cond.numeric)
	case wire.OpNotEqual:
		return !withinTolerance(aggregate, cond.numeric)
	default:
		return compareNumeric(aggregate, cond.numeric, cond.Operator)
	}
}

func withinTolerance(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < windowedTolerance
}

func compareNumeric(a, b float64, op wire.Operator) bool {
	switch op {
	case wire.OpEqual:
		return a == b
	case wire.OpNotEqual:
		return a != b
	case wire.OpGreaterThan:
		return a > b
	case wire.OpGreaterEqual:
		return a >= b
	case wire.OpLessThan:
		return a < b
	case wire.OpLessEqual:
		return a <= b
	default:
		return false
	}
}

// compareString implements <,>,≤,≥ via lexicographic ordering, matching the
// source implementation's semantics (spec §4.2, §9).
func compareString(a, b string, op wire.Operator) bool {
	switch op {
	case wire.OpEqual:
		return a == b
	case wire.OpNotEqual:
		return a != b
	case wire.OpGreaterThan:
		return strings.Compare(a, b) > 0
	case wire.OpGreaterEqual:
		return strings.Compare(a, b) >= 0
	case wire.OpLessThan:
		return strings.Compare(a, b) < 0
	case wire.OpLessEqual:
		return strings.Compare(a, b) <= 0
	default:
		return false
	}
}

// BaseField strips a windowed field name's aggregation prefix
// (avg_/max_/min_) to locate the underlying numeric field on an event,
// per spec §3's "windowed field name" convention.
func BaseField(windowedFieldName string) string {
	for _, prefix := range []string{"avg_", "max_", "min_"} {
		if strings.HasPrefix(windowedFieldName, prefix) {
			return strings.TrimPrefix(windowedFieldName, prefix)
		}
	}
	return windowedFieldName
}
