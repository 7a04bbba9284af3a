package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Handlers: single transitions
// ---------------------------------------------------------------------------

// ReduceHandler handles POST /calculator/reduce: applies one action to the
// supplied state and returns the next state.
func ReduceHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.reduce",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	var req ReduceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "reduce", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	action, err := req.Action.Action()
	switch {
	case errors.Is(err, ErrUnknownAction):
		IgnoreUnknown(ctx, logger, req.Action.Type)
		span.SetAttributes(attribute.String("calculator.ignored", string(req.Action.Type)))
		handlers.WriteJSON(w, http.StatusOK, ReduceResponse{
			State:   req.State,
			Kind:    req.Action.Type,
			Ignored: string(req.Action.Type),
		})
		return
	case err != nil:
		observability.RecordError(ctx, span, logger, errorCounter, "reduce", err.Error(), err, http.StatusBadRequest, w)
		return
	}

	next := Dispatch(ctx, req.State, action)
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator action applied",
		zap.String("kind", string(action.Kind())),
		zap.Bool("changed", next != req.State),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, ReduceResponse{
		State:   next,
		Kind:    action.Kind(),
		Changed: next != req.State,
	})
}

// EvaluateHandler handles POST /calculator/evaluate: computes one pending
// operation directly. Non-numeric operands produce an empty result, not an
// error.
func EvaluateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	op, err := ParseOperation(req.Operation)
	if err != nil {
		op = Operation(req.Operation)
	}

	result := Compute(req.Previous, op, req.Current)

	attrs := metric.WithAttributes(attribute.String("operation", op.Name()))
	evalCounter.Add(ctx, 1, attrs)
	if v, ok := ParseNumber(result); ok && !math.IsInf(v, 0) {
		resultGauge.Record(ctx, v, attrs)
	}

	span.SetAttributes(
		attribute.String("calculator.operation", op.Name()),
		attribute.String("calculator.operand.previous", req.Previous),
		attribute.String("calculator.operand.current", req.Current),
		attribute.String("calculator.result", result),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator evaluation completed",
		zap.String("operation", op.Name()),
		zap.String("previous", req.Previous),
		zap.String("current", req.Current),
		zap.String("result", result),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, EvaluateResponse{
		Previous:  req.Previous,
		Operation: string(op),
		Current:   req.Current,
		Result:    result,
	})
}

// ---------------------------------------------------------------------------
// Handler: replayed sequences, one child span per step
// ---------------------------------------------------------------------------

// ReplayHandler handles POST /calculator/replay: applies a sequence of
// actions from a starting state, creating a child span for every step.
// Unknown action kinds are recorded as unchanged steps.
func ReplayHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.replay",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	var req ReplayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "replay", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	var (
		actions []Action
		err     error
	)
	if req.Keys != "" {
		actions, err = ParseKeys(req.Keys)
	} else {
		actions, err = decodeActions(req.Actions)
	}
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "replay", err.Error(), err, http.StatusBadRequest, w)
		return
	}

	if len(actions) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "replay", "no actions provided", fmt.Errorf("actions array is empty"), http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.Int("replay.steps_count", len(actions)))

	state := req.State
	steps := make([]ReplayStep, 0, len(actions))

	for i, action := range actions {
		var next State
		if action == nil {
			IgnoreUnknown(ctx, logger, req.Actions[i].Type)
			next = state
		} else {
			next = Dispatch(ctx, state, action)
		}

		step := ReplayStep{
			Action:  NewActionRequest(action),
			State:   next,
			Changed: next != state,
		}
		if action == nil {
			step.Action = req.Actions[i]
		}
		steps = append(steps, step)
		state = next
	}

	span.AddEvent("replay.complete", trace.WithAttributes(
		attribute.Int("total_steps", len(steps)),
		attribute.String("current_operand", state.Current.String()),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator replay completed",
		zap.Int("steps", len(steps)),
		zap.String("current_operand", state.Current.String()),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, ReplayResponse{
		Initial: req.State,
		Steps:   steps,
		State:   state,
	})
}

// decodeActions decodes wire actions. Unknown kinds decode to a nil Action,
// which Reduce treats as a no-op; malformed payloads fail the whole batch.
func decodeActions(reqs []ActionRequest) ([]Action, error) {
	actions := make([]Action, 0, len(reqs))
	for i, req := range reqs {
		action, err := req.Action()
		if errors.Is(err, ErrUnknownAction) {
			actions = append(actions, nil)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		actions = append(actions, action)
	}
	return actions, nil
}

// IgnoreUnknown records an action of an unrecognized kind that was dropped
// without touching the state.
func IgnoreUnknown(ctx context.Context, logger *zap.Logger, kind Kind) {
	ignoredCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "unknown")))
	logger.Warn("ignoring unknown calculator action",
		zap.String("kind", string(kind)),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)
}
