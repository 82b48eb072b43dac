package calculator

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrDivisionByZero is returned by Divide for a zero divisor.
	ErrDivisionByZero = errors.New("/ by zero")

	// ErrArgumentRequired matches every *ArgumentError.
	ErrArgumentRequired = errors.New("argument required")

	// ErrOperandOutOfRange is wrapped by the ParseError for an operand
	// outside the accepted exponent or precision range.
	ErrOperandOutOfRange = errors.New("operand out of range")
)

// ArgumentError reports a required operand that was not supplied.
type ArgumentError struct {
	Argument string
}

func (e *ArgumentError) Error() string {
	if e.Argument == "" {
		return "argument should not be null"
	}
	return strings.ToUpper(e.Argument[:1]) + e.Argument[1:] + " should not be null"
}

func (e *ArgumentError) Is(target error) bool {
	return target == ErrArgumentRequired
}

// ParseError reports a path segment that is not a decimal number within
// the accepted operand range.
type ParseError struct {
	Param string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to convert value %q of path parameter %q to decimal: %v", e.Value, e.Param, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// statusFor maps an error to the HTTP status written to the client.
// Client mistakes are 400, everything else is 500.
func statusFor(err error) int {
	var parseErr *ParseError
	switch {
	case errors.As(err, &parseErr):
		return http.StatusBadRequest
	case errors.Is(err, ErrArgumentRequired):
		return http.StatusBadRequest
	case errors.Is(err, ErrDivisionByZero):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
