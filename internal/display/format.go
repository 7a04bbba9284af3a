// Package display renders calculator state for people: operands grouped per
// locale, the pending operator shown after the previous operand.
package display

import (
	"math"
	"strings"

	"go-chi-calculator/internal/calculator"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// exactDigits is the longest integer text float64 always holds exactly.
const exactDigits = 15

// DefaultTag is the locale used when none is configured or requested.
var DefaultTag = language.AmericanEnglish

// Formatter formats operand text for one locale.
type Formatter struct {
	tag       language.Tag
	printer   *message.Printer
	separator string
	grouping  bool
}

// NewFormatter returns a formatter for tag.
func NewFormatter(tag language.Tag) *Formatter {
	p := message.NewPrinter(tag)
	separator, grouping := groupSeparator(p)
	return &Formatter{
		tag:       tag,
		printer:   p,
		separator: separator,
		grouping:  grouping,
	}
}

// groupSeparator reads the locale's thousands separator off a formatted
// 10000. It reports false when the locale does not print ASCII digits.
func groupSeparator(p *message.Printer) (string, bool) {
	s := p.Sprint(number.Decimal(10000))
	if !strings.HasPrefix(s, "10") || !strings.HasSuffix(s, "000") || len(s) < 5 {
		return "", false
	}
	return s[2 : len(s)-3], true
}

// Tag returns the formatter's locale.
func (f *Formatter) Tag() language.Tag { return f.tag }

// FormatOperand formats a present operand; absent operands stay absent.
// The text is split on the first "."; the integer part is grouped per
// locale and the fraction is reattached verbatim, so "1234.50" stays
// "1,234.50" rather than being rounded.
func (f *Formatter) FormatOperand(o calculator.Operand) (string, bool) {
	if !o.Present() {
		return "", false
	}

	integer, fraction, hasFraction := strings.Cut(o.String(), ".")
	formatted := f.formatInteger(integer)
	if !hasFraction {
		return formatted, true
	}
	return formatted + "." + fraction, true
}

func (f *Formatter) formatInteger(text string) string {
	sign := ""
	if rest, ok := strings.CutPrefix(text, "-"); ok {
		sign, text = "-", rest
	}
	if text == "" {
		text = "0"
	}

	if len(text) > exactDigits && f.grouping && isDigits(text) {
		return sign + group(text, f.separator)
	}

	v, ok := calculator.ParseNumber(text)
	switch {
	case !ok:
		return sign + text
	case math.IsInf(v, 0):
		return sign + "∞"
	}

	return sign + f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
}

// group inserts sep every three digits from the right. Digits are kept as
// typed, so operands longer than float64 precision are not rounded.
func group(digits, sep string) string {
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return "0"
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(sep)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// View is a rendered calculator display.
type View struct {
	Previous  string `json:"previous"`
	Operation string `json:"operation"`
	Current   string `json:"current"`
}

// Render formats s for display. Absent operands render as "".
func (f *Formatter) Render(s calculator.State) View {
	prev, _ := f.FormatOperand(s.Previous)
	curr, _ := f.FormatOperand(s.Current)
	return View{
		Previous:  prev,
		Operation: string(s.Operation),
		Current:   curr,
	}
}

// Lines returns the two display rows: "previous operation" and current.
func (v View) Lines() (string, string) {
	top := strings.TrimSpace(v.Previous + " " + v.Operation)
	return top, v.Current
}
