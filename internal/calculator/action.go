package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAction is returned when decoding an action kind outside the
	// fixed set. Callers treat it as a no-op.
	ErrUnknownAction = errors.New("unknown action")

	// ErrInvalidPayload is returned when an action's payload is malformed.
	ErrInvalidPayload = errors.New("invalid action payload")
)

// Kind names an action on the wire.
type Kind string

const (
	KindAddDigit        Kind = "add_digit"
	KindChooseOperation Kind = "choose_operation"
	KindClear           Kind = "clear"
	KindDeleteDigit     Kind = "delete_digit"
	KindEvaluate        Kind = "evaluate"
)

// Action is one discrete user input. The set is closed.
type Action interface {
	Kind() Kind
	isAction()
}

// AddDigit types a digit 0-9 or a decimal point.
type AddDigit struct {
	Digit string
}

// ChooseOperation presses an operator key.
type ChooseOperation struct {
	Operation Operation
}

// Clear resets to the empty state.
type Clear struct{}

// DeleteDigit is backspace on the current operand.
type DeleteDigit struct{}

// Evaluate computes the pending operation.
type Evaluate struct{}

func (AddDigit) Kind() Kind        { return KindAddDigit }
func (ChooseOperation) Kind() Kind { return KindChooseOperation }
func (Clear) Kind() Kind           { return KindClear }
func (DeleteDigit) Kind() Kind     { return KindDeleteDigit }
func (Evaluate) Kind() Kind        { return KindEvaluate }

func (AddDigit) isAction()        {}
func (ChooseOperation) isAction() {}
func (Clear) isAction()           {}
func (DeleteDigit) isAction()     {}
func (Evaluate) isAction()        {}

// ValidDigit reports whether d is a single digit 0-9 or ".".
func ValidDigit(d string) bool {
	if len(d) != 1 {
		return false
	}
	return d == "." || (d[0] >= '0' && d[0] <= '9')
}

// ParseAction builds an action from its wire form. Payload fields that the
// kind does not use are ignored.
func ParseAction(kind Kind, digit, operation string) (Action, error) {
	switch kind {
	case KindAddDigit:
		if !ValidDigit(digit) {
			return nil, fmt.Errorf("%w: digit %q", ErrInvalidPayload, digit)
		}
		return AddDigit{Digit: digit}, nil
	case KindChooseOperation:
		op, err := ParseOperation(operation)
		if err != nil {
			return nil, err
		}
		return ChooseOperation{Operation: op}, nil
	case KindClear:
		return Clear{}, nil
	case KindDeleteDigit:
		return DeleteDigit{}, nil
	case KindEvaluate:
		return Evaluate{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, kind)
	}
}
