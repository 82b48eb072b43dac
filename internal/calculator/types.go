package calculator

import (
	"github.com/shopspring/decimal"
)

// Operation names one of the calculator endpoints. It is the first component
// of every cache key.
type Operation string

const (
	OpAdd      Operation = "add"
	OpSubtract Operation = "subtract"
	OpMultiply Operation = "multiply"
	OpDivide   Operation = "divide"
)

func (o Operation) String() string { return string(o) }

// Operands is an ordered list of optional decimals. Absent entries are
// skipped by the folds but still take part in the cache key.
type Operands []decimal.NullDecimal

// Present wraps d as a present operand.
func Present(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}

// Absent is the marker for an omitted operand.
var Absent = decimal.NullDecimal{}

// Strings renders the operands for logs and span attributes.
func (o Operands) Strings() []string {
	out := make([]string, len(o))
	for i, op := range o {
		if !op.Valid {
			out[i] = "null"
			continue
		}
		out[i] = op.Decimal.String()
	}
	return out
}

// Result is the outcome of a calculation: either a decimal or the empty
// marker produced when a fold has nothing to work on.
type Result struct {
	value decimal.NullDecimal
}

// Empty is the result of folding zero present operands.
var Empty = Result{}

func NewResult(d decimal.Decimal) Result {
	return Result{value: decimal.NewNullDecimal(d)}
}

// Value returns the decimal and whether one is present.
func (r Result) Value() (decimal.Decimal, bool) {
	return r.value.Decimal, r.value.Valid
}

func (r Result) IsEmpty() bool { return !r.value.Valid }

// Equal reports whether both results are empty or hold numerically equal
// decimals. Scale is ignored, so 7.7 equals 7.70.
func (r Result) Equal(other Result) bool {
	if r.IsEmpty() || other.IsEmpty() {
		return r.IsEmpty() && other.IsEmpty()
	}
	return r.value.Decimal.Equal(other.value.Decimal)
}

func (r Result) String() string {
	if r.IsEmpty() {
		return "empty"
	}
	return formatDecimal(r.value.Decimal)
}

// MarshalJSON writes {"result": <number>} or {} for the empty marker. The
// number keeps the decimal's scale and is never routed through float64.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.IsEmpty() {
		return []byte("{}"), nil
	}
	return []byte(`{"result":` + formatDecimal(r.value.Decimal) + `}`), nil
}

func formatDecimal(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}
