package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide structured logger. It is a no-op logger until
// InitLogger runs so packages and tests can log unconditionally.
var Logger = zap.NewNop()

// InitLogger builds the production JSON logger at the given level
// ("debug", "info", "warn", "error").
func InitLogger(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	Logger, err = cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	return nil
}

func SyncLogger() {
	_ = Logger.Sync()
}

// LoggerWithTrace returns a child logger enriched with trace_id and span_id
// fields from the active OTel span in ctx.
//
// It also embeds ctx itself as a zap.Any("context", ctx) field. The otelzap
// bridge detects any field whose value implements context.Context and uses it
// as the context passed to log.Logger.Emit, which populates the native
// TraceID and SpanID on the exported OTLP log record.
//
// The human-readable trace_id / span_id string fields are kept so that stdout
// JSON logs remain greppable without an OTel-aware tool.
func LoggerWithTrace(ctx context.Context) *zap.Logger {
	span := trace.SpanContextFromContext(ctx)

	if !span.IsValid() {
		return Logger
	}

	return Logger.With(
		zap.Any("context", ctx),
		zap.String("trace_id", span.TraceID().String()),
		zap.String("span_id", span.SpanID().String()),
	)
}
