package calculator

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Compute applies op to the two operand texts and returns the result as
// operand text. Unparsable operands or an unknown operation yield "".
// Division by zero is not guarded and yields "Infinity", "-Infinity" or "NaN".
func Compute(previous string, op Operation, current string) string {
	prev, ok := ParseNumber(previous)
	if !ok {
		return ""
	}
	curr, ok := ParseNumber(current)
	if !ok {
		return ""
	}

	var result float64
	switch op {
	case Add:
		result = prev + curr
	case Subtract:
		result = prev - curr
	case Multiply:
		result = prev * curr
	case Divide:
		result = prev / curr
	default:
		return ""
	}

	return FormatNumber(result)
}

// ParseNumber parses operand text as a float64. Overflowing literals parse
// to an infinity; "NaN" and non-numeric text fail.
func ParseNumber(text string) (float64, bool) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// FormatNumber renders f as the shortest decimal text that parses back to f:
// plain notation for magnitudes in [1e-6, 1e21), exponent notation outside.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}
