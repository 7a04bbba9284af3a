package observability

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitLoggerLevels(t *testing.T) {
	oldLogger := Logger
	t.Cleanup(func() { Logger = oldLogger })

	if err := InitLogger("warn"); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	if Logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("expected info to be disabled at warn level")
	}
	if !Logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatal("expected error to be enabled at warn level")
	}

	if err := InitLogger("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLoggerWithTraceWithoutSpanReturnsBaseLogger(t *testing.T) {
	oldLogger := Logger
	Logger = zap.NewNop()
	t.Cleanup(func() { Logger = oldLogger })

	if got := LoggerWithTrace(context.Background()); got != Logger {
		t.Fatal("expected base logger when ctx carries no span")
	}
}
