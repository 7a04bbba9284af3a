package calculator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Operand is an operand kept as the text the user entered. The zero value is
// absent, which is distinct from present-but-empty text.
type Operand struct {
	text    string
	present bool
}

// None is the absent operand.
var None = Operand{}

// Text returns a present operand holding s.
func Text(s string) Operand {
	return Operand{text: s, present: true}
}

// Present reports whether the operand holds text (possibly empty).
func (o Operand) Present() bool { return o.present }

// String returns the operand text, or "" when absent.
func (o Operand) String() string { return o.text }

func (o Operand) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}
	return json.Marshal(o.text)
}

func (o *Operand) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("operand: %w", err)
	}
	*o = Text(s)
	return nil
}

// Operation is a pending binary operator symbol.
type Operation string

const (
	NoOperation Operation = ""
	Add         Operation = "+"
	Subtract    Operation = "-"
	Multiply    Operation = "*"
	Divide      Operation = "÷"
)

// Operations lists the supported operators in keypad order.
var Operations = []Operation{Divide, Multiply, Add, Subtract}

// Valid reports whether op is one of the four supported operators.
func (op Operation) Valid() bool {
	switch op {
	case Add, Subtract, Multiply, Divide:
		return true
	}
	return false
}

// Name returns a stable ASCII name for op, used for metric and span attributes.
func (op Operation) Name() string {
	switch op {
	case Add:
		return "add"
	case Subtract:
		return "subtract"
	case Multiply:
		return "multiply"
	case Divide:
		return "divide"
	case NoOperation:
		return "none"
	}
	return "unknown"
}

// ParseOperation accepts an operator symbol. "/" is read as "÷".
func ParseOperation(s string) (Operation, error) {
	s = strings.TrimSpace(s)
	if s == "/" {
		return Divide, nil
	}
	op := Operation(s)
	if !op.Valid() {
		return NoOperation, fmt.Errorf("%w: operation %q", ErrInvalidPayload, s)
	}
	return op, nil
}

func (op Operation) MarshalJSON() ([]byte, error) {
	if op == NoOperation {
		return []byte("null"), nil
	}
	return json.Marshal(string(op))
}

func (op *Operation) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*op = NoOperation
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("operation: %w", err)
	}
	if s == "" {
		*op = NoOperation
		return nil
	}

	parsed, err := ParseOperation(s)
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

// State is a calculator display state. It is a plain value: Reduce never
// mutates its input and the zero value is the empty state.
type State struct {
	Current   Operand   `json:"current_operand"`
	Previous  Operand   `json:"previous_operand"`
	Operation Operation `json:"operation"`
	Overwrite bool      `json:"overwrite"`
}

// IsEmpty reports whether s is the empty (initial or cleared) state.
func (s State) IsEmpty() bool {
	return s == State{}
}
