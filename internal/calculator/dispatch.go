package calculator

import (
	"context"
	"fmt"
	"math"
	"time"

	"go-chi-calculator/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Dispatch applies action to s through Reduce and records the transition:
// a child span, action and evaluation metrics, and a debug log line.
// The returned state is exactly Reduce(s, action).
func Dispatch(ctx context.Context, s State, action Action) State {
	kind := kindOf(action)

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", kind),
		trace.WithAttributes(
			attribute.String("calculator.action", kind),
			attribute.String("request.id", observability.RequestIDFromContext(ctx)),
		),
	)
	defer span.End()

	start := time.Now()
	next := Reduce(s, action)
	elapsed := float64(time.Since(start).Nanoseconds()) / 1e6 // ms

	attrs := metric.WithAttributes(attribute.String("kind", kind))
	actionsCounter.Add(ctx, 1, attrs)
	reduceHistogram.Record(ctx, elapsed, attrs)

	changed := next != s
	if !changed {
		ignoredCounter.Add(ctx, 1, attrs)
		span.AddEvent("transition.ignored")
	}

	if op, result, ok := evaluation(s, action, next); ok {
		opAttrs := metric.WithAttributes(attribute.String("operation", op.Name()))
		evalCounter.Add(ctx, 1, opAttrs)

		if v, parsed := ParseNumber(result); parsed && !math.IsInf(v, 0) {
			resultGauge.Record(ctx, v, opAttrs)
		}

		span.AddEvent("computation.complete", trace.WithAttributes(
			attribute.String("operation", op.Name()),
			attribute.String("result", result),
		))
		if result == "" {
			span.SetStatus(codes.Error, "operand not numeric")
		}
	}

	span.SetAttributes(
		attribute.Bool("calculator.changed", changed),
		attribute.Bool("calculator.overwrite", next.Overwrite),
	)

	observability.LoggerWithTrace(ctx).Debug("calculator action reduced",
		zap.String("kind", kind),
		zap.Bool("changed", changed),
		zap.String("current_operand", next.Current.String()),
		zap.String("previous_operand", next.Previous.String()),
		zap.String("operation", string(next.Operation)),
		zap.Float64("duration_ms", elapsed),
	)

	return next
}

// TrackSessions adjusts the active sessions instrument by delta.
func TrackSessions(ctx context.Context, delta int64) {
	sessionsUpDown.Add(ctx, delta)
}

// evaluation reports whether the transition from before to after computed
// the pending operation, and the result text it produced.
func evaluation(before State, action Action, after State) (Operation, string, bool) {
	if !before.Previous.Present() || !before.Current.Present() || before.Operation == NoOperation {
		return NoOperation, "", false
	}

	switch action.(type) {
	case Evaluate:
		return before.Operation, after.Current.String(), true
	case ChooseOperation:
		return before.Operation, after.Previous.String(), true
	}
	return NoOperation, "", false
}

func kindOf(action Action) string {
	if action == nil {
		return "unknown"
	}
	return string(action.Kind())
}
