package calculator

import (
	"context"
	"testing"

	"go-chi-calculator/internal/observability"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDispatchMatchesReduceAndLogs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	oldLogger := observability.Logger
	observability.Logger = zap.New(core)
	t.Cleanup(func() { observability.Logger = oldLogger })

	start := State{Previous: Text("6"), Operation: Multiply, Current: Text("7")}

	got := Dispatch(context.Background(), start, Evaluate{})
	if want := Reduce(start, Evaluate{}); got != want {
		t.Fatalf("expected %#v, got %#v", want, got)
	}

	entries := logs.FilterMessage("calculator action reduced").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields["kind"] != string(KindEvaluate) {
		t.Fatalf("expected kind %q, got %#v", KindEvaluate, fields["kind"])
	}
	if fields["current_operand"] != "42" {
		t.Fatalf("expected current_operand 42, got %#v", fields["current_operand"])
	}
	if fields["changed"] != true {
		t.Fatalf("expected changed true, got %#v", fields["changed"])
	}
}

func TestDispatchNilActionIsNoOp(t *testing.T) {
	start := State{Current: Text("1")}
	if got := Dispatch(context.Background(), start, nil); got != start {
		t.Fatalf("expected state unchanged, got %#v", got)
	}
}

func TestEvaluationDetectsComputedTransitions(t *testing.T) {
	pending := State{Previous: Text("3"), Operation: Add, Current: Text("4")}

	tests := []struct {
		name   string
		before State
		action Action
		wantOK bool
		result string
	}{
		{name: "evaluate", before: pending, action: Evaluate{}, wantOK: true, result: "7"},
		{name: "chained operator", before: pending, action: ChooseOperation{Operation: Subtract}, wantOK: true, result: "7"},
		{name: "digit", before: pending, action: AddDigit{Digit: "1"}},
		{name: "incomplete", before: State{Current: Text("4")}, action: Evaluate{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			after := Reduce(tc.before, tc.action)
			op, result, ok := evaluation(tc.before, tc.action, after)
			if ok != tc.wantOK {
				t.Fatalf("expected ok=%t, got %t", tc.wantOK, ok)
			}
			if ok && (op != Add || result != tc.result) {
				t.Fatalf("expected + -> %q, got %q -> %q", tc.result, op, result)
			}
		})
	}
}
