package calculator

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestParseKeys(t *testing.T) {
	tests := []struct {
		seq  string
		want []Action
	}{
		{
			seq: "12+3.5=",
			want: []Action{
				AddDigit{Digit: "1"}, AddDigit{Digit: "2"}, ChooseOperation{Operation: Add},
				AddDigit{Digit: "3"}, AddDigit{Digit: "."}, AddDigit{Digit: "5"}, Evaluate{},
			},
		},
		{
			seq:  "7 / 2",
			want: []Action{AddDigit{Digit: "7"}, ChooseOperation{Operation: Divide}, AddDigit{Digit: "2"}},
		},
		{
			seq:  "9÷3*-",
			want: []Action{AddDigit{Digit: "9"}, ChooseOperation{Operation: Divide}, AddDigit{Digit: "3"}, ChooseOperation{Operation: Multiply}, ChooseOperation{Operation: Subtract}},
		},
		{
			seq:  "12AC3 DEL",
			want: []Action{AddDigit{Digit: "1"}, AddDigit{Digit: "2"}, Clear{}, AddDigit{Digit: "3"}, DeleteDigit{}},
		},
		{
			seq:  "ac, del, ⌫",
			want: []Action{Clear{}, DeleteDigit{}, DeleteDigit{}},
		},
		{seq: "   ", want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.seq, func(t *testing.T) {
			got, err := ParseKeys(tc.seq)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %#v, got %#v", tc.want, got)
			}
		})
	}
}

func TestParseKeysRejectsUnknownKeys(t *testing.T) {
	for _, seq := range []string{"x", "12%", "ACDEL", "sqrt"} {
		t.Run(seq, func(t *testing.T) {
			_, err := ParseKeys(seq)
			if !errors.Is(err, ErrUnknownKey) {
				t.Fatalf("expected ErrUnknownKey, got %v", err)
			}
		})
	}
}

func TestKeypadLayoutParses(t *testing.T) {
	count := 0
	for _, row := range Keys {
		for _, label := range row {
			if _, err := ParseKey(label); err != nil {
				t.Fatalf("keypad label %q: %v", label, err)
			}
			count++
		}
	}
	if count != 19 {
		t.Fatalf("expected 19 keys, got %d", count)
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		name      string
		kind      Kind
		digit, op string
		want      Action
		wantErr   error
	}{
		{name: "digit", kind: KindAddDigit, digit: "7", want: AddDigit{Digit: "7"}},
		{name: "decimal point", kind: KindAddDigit, digit: ".", want: AddDigit{Digit: "."}},
		{name: "operation", kind: KindChooseOperation, op: "÷", want: ChooseOperation{Operation: Divide}},
		{name: "slash alias", kind: KindChooseOperation, op: "/", want: ChooseOperation{Operation: Divide}},
		{name: "clear", kind: KindClear, want: Clear{}},
		{name: "delete", kind: KindDeleteDigit, want: DeleteDigit{}},
		{name: "evaluate ignores payload", kind: KindEvaluate, digit: "3", want: Evaluate{}},
		{name: "multi-character digit", kind: KindAddDigit, digit: "12", wantErr: ErrInvalidPayload},
		{name: "letter digit", kind: KindAddDigit, digit: "a", wantErr: ErrInvalidPayload},
		{name: "missing operation", kind: KindChooseOperation, wantErr: ErrInvalidPayload},
		{name: "unknown operation", kind: KindChooseOperation, op: "^", wantErr: ErrInvalidPayload},
		{name: "unknown kind", kind: "square_root", wantErr: ErrUnknownAction},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAction(tc.kind, tc.digit, tc.op)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %#v, got %#v", tc.want, got)
			}
		})
	}
}

func TestActionRequestRoundTrip(t *testing.T) {
	for _, action := range []Action{
		AddDigit{Digit: "4"},
		ChooseOperation{Operation: Multiply},
		Clear{},
		DeleteDigit{},
		Evaluate{},
	} {
		got, err := NewActionRequest(action).Action()
		if err != nil {
			t.Fatalf("%T: %v", action, err)
		}
		if got != action {
			t.Fatalf("expected %#v, got %#v", action, got)
		}
	}
}

func TestStateJSONDistinguishesAbsentFromEmpty(t *testing.T) {
	s := State{Current: Text(""), Operation: Divide, Previous: Text("9")}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"current_operand":"","previous_operand":"9","operation":"÷","overwrite":false}`
	if string(data) != want {
		t.Fatalf("expected %s, got %s", want, data)
	}

	var empty State
	if err := json.Unmarshal([]byte(`{"current_operand":null,"operation":null}`), &empty); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !empty.IsEmpty() {
		t.Fatalf("expected empty state, got %#v", empty)
	}

	if err := json.Unmarshal([]byte(`{"operation":"%"}`), &empty); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload for unknown operation, got %v", err)
	}
}
