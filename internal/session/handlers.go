package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/display"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

var tracer = otel.Tracer("session")

// Response is the JSON body returned for a session.
type Response struct {
	ID      string           `json:"id"`
	State   calculator.State `json:"state"`
	Display display.View     `json:"display"`
	Locale  string           `json:"locale"`
}

// KeysRequest is the JSON body for POST /sessions/{id}/keys.
type KeysRequest struct {
	Keys string `json:"keys"`
}

// Handler serves the /sessions endpoints.
type Handler struct {
	store  *Store
	locale language.Tag
}

// NewHandler returns a Handler rendering displays in locale unless the
// request asks for another one.
func NewHandler(store *Store, locale language.Tag) *Handler {
	return &Handler{store: store, locale: locale}
}

// RegisterRoutes mounts the session endpoints under /sessions.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
			r.Post("/actions", h.Actions)
			r.Post("/keys", h.Keys)
		})
	})
}

// Create handles POST /sessions.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "session.create")
	defer span.End()

	snap, err := h.store.Create(ctx)
	if err != nil {
		observability.RecordError(ctx, span, logger, calculator.ErrorCounter(), "session.create", "session limit reached", err, http.StatusServiceUnavailable, w)
		return
	}

	span.SetAttributes(attribute.String("session.id", snap.ID))
	span.SetStatus(codes.Ok, "")
	logger.Info("session created",
		zap.String("session_id", snap.ID),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusCreated, h.respond(r, snap))
}

// Get handles GET /sessions/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "session.get")
	defer span.End()

	snap, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.notFound(ctx, w, span, logger, "session.get", err)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, h.respond(r, snap))
}

// Delete handles DELETE /sessions/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "session.delete")
	defer span.End()

	id := chi.URLParam(r, "id")
	if err := h.store.Delete(ctx, id); err != nil {
		h.notFound(ctx, w, span, logger, "session.delete", err)
		return
	}

	span.SetStatus(codes.Ok, "")
	logger.Info("session deleted",
		zap.String("session_id", id),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)
	w.WriteHeader(http.StatusNoContent)
}

// Actions handles POST /sessions/{id}/actions with a single action body
// {"type": ..., "payload": {...}}. Unknown action kinds leave the session
// unchanged.
func (h *Handler) Actions(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "session.actions")
	defer span.End()

	var req calculator.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, calculator.ErrorCounter(), "session.actions", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	var actions []calculator.Action
	action, err := req.Action()
	switch {
	case errors.Is(err, calculator.ErrUnknownAction):
		calculator.IgnoreUnknown(ctx, logger, req.Type)
	case err != nil:
		observability.RecordError(ctx, span, logger, calculator.ErrorCounter(), "session.actions", err.Error(), err, http.StatusBadRequest, w)
		return
	default:
		actions = append(actions, action)
	}

	h.dispatch(ctx, w, r, span, logger, "session.actions", actions)
}

// Keys handles POST /sessions/{id}/keys with a keypad sequence such as
// {"keys": "12+3="}.
func (h *Handler) Keys(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "session.keys")
	defer span.End()

	var req KeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, calculator.ErrorCounter(), "session.keys", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	actions, err := calculator.ParseKeys(req.Keys)
	if err != nil {
		observability.RecordError(ctx, span, logger, calculator.ErrorCounter(), "session.keys", err.Error(), err, http.StatusBadRequest, w)
		return
	}

	h.dispatch(ctx, w, r, span, logger, "session.keys", actions)
}

func (h *Handler) dispatch(ctx context.Context, w http.ResponseWriter, r *http.Request, span trace.Span, logger *zap.Logger, opName string, actions []calculator.Action) {
	snap, err := h.store.Dispatch(ctx, chi.URLParam(r, "id"), actions...)
	if err != nil {
		h.notFound(ctx, w, span, logger, opName, err)
		return
	}

	span.SetAttributes(
		attribute.Int("session.actions", len(actions)),
		attribute.String("calculator.current_operand", snap.State.Current.String()),
	)
	span.SetStatus(codes.Ok, "")
	logger.Info("session actions applied",
		zap.String("session_id", snap.ID),
		zap.Int("actions", len(actions)),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusOK, h.respond(r, snap))
}

func (h *Handler) start(r *http.Request, name string) (ctx context.Context, span trace.Span, logger *zap.Logger) {
	ctx = r.Context()
	logger = observability.LoggerWithTrace(ctx)
	ctx, span = tracer.Start(ctx, name,
		trace.WithAttributes(attribute.String("request.id", observability.RequestIDFromContext(ctx))),
	)
	return ctx, span, logger
}

func (h *Handler) notFound(ctx context.Context, w http.ResponseWriter, span trace.Span, logger *zap.Logger, opName string, err error) {
	status, msg := http.StatusInternalServerError, "session lookup failed"
	if errors.Is(err, ErrNotFound) {
		status, msg = http.StatusNotFound, "session not found"
	}
	observability.RecordError(ctx, span, logger, calculator.ErrorCounter(), opName, msg, err, status, w)
}

func (h *Handler) respond(r *http.Request, snap Snapshot) Response {
	tag := display.ResolveTag(r, h.locale)
	return Response{
		ID:      snap.ID,
		State:   snap.State,
		Display: display.NewFormatter(tag).Render(snap.State),
		Locale:  tag.String(),
	}
}
