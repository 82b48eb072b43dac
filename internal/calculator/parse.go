package calculator

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// Operand bounds. Folds rescale to the smallest exponent, so an unbounded
// exponent turns a short path segment into a huge coefficient.
const (
	maxOperandExponent = 1000
	maxOperandDigits   = 1000
)

// parseOperands reads the named path parameters in order. A parameter the
// matched route does not define comes back absent.
func parseOperands(r *http.Request, params ...string) (Operands, error) {
	operands := make(Operands, 0, len(params))
	for _, name := range params {
		op, err := parseOperand(r, name)
		if err != nil {
			return nil, err
		}
		operands = append(operands, op)
	}
	return operands, nil
}

func parseOperand(r *http.Request, name string) (decimal.NullDecimal, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return Absent, nil
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Absent, &ParseError{Param: name, Value: raw, Err: err}
	}
	if err := checkOperandRange(d); err != nil {
		return Absent, &ParseError{Param: name, Value: raw, Err: err}
	}
	return Present(d), nil
}

func checkOperandRange(d decimal.Decimal) error {
	if exp := d.Exponent(); exp > maxOperandExponent || exp < -maxOperandExponent {
		return fmt.Errorf("%w: exponent %d outside [-%d, %d]", ErrOperandOutOfRange, exp, maxOperandExponent, maxOperandExponent)
	}
	if n := d.NumDigits(); n > maxOperandDigits {
		return fmt.Errorf("%w: %d digits, at most %d allowed", ErrOperandOutOfRange, n, maxOperandDigits)
	}
	return nil
}
