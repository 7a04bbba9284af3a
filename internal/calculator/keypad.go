package calculator

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrUnknownKey is returned for a key label that is not on the keypad.
var ErrUnknownKey = errors.New("unknown key")

// Keys is the keypad layout, row by row.
var Keys = [][]string{
	{"AC", "DEL", "÷"},
	{"1", "2", "3", "*"},
	{"4", "5", "6", "+"},
	{"7", "8", "9", "-"},
	{".", "0", "="},
}

// ParseKey maps a keypad label to its action.
func ParseKey(label string) (Action, error) {
	label = strings.TrimSpace(label)

	switch strings.ToUpper(label) {
	case "AC", "C", "CLEAR":
		return Clear{}, nil
	case "DEL", "⌫", "BACKSPACE":
		return DeleteDigit{}, nil
	case "=", "ENTER":
		return Evaluate{}, nil
	}

	if ValidDigit(label) {
		return AddDigit{Digit: label}, nil
	}

	if op, err := ParseOperation(label); err == nil {
		return ChooseOperation{Operation: op}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKey, label)
}

// ParseKeys tokenizes a key sequence such as "12+3.5=" or "7 * 6 DEL =".
// Single-character keys may be written back to back; word keys (AC, DEL)
// must be separated from neighbouring letters.
func ParseKeys(seq string) ([]Action, error) {
	var actions []Action

	runes := []rune(seq)
	for i := 0; i < len(runes); {
		r := runes[i]
		if unicode.IsSpace(r) || r == ',' {
			i++
			continue
		}

		j := i + 1
		if unicode.IsLetter(r) {
			for j < len(runes) && unicode.IsLetter(runes[j]) {
				j++
			}
		}

		action, err := ParseKey(string(runes[i:j]))
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", len(actions), err)
		}
		actions = append(actions, action)
		i = j
	}

	return actions, nil
}
