package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/server"
	"go-chi-calculator/internal/session"

	"go.uber.org/zap"
)

func main() {

	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	// Logger
	if err := observability.InitLogger(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Tracing, metrics, OTLP logs
	telemetryShutdown, err := initTelemetry(ctx, cfg)
	if err != nil {
		panic(err)
	}
	defer telemetryShutdown(ctx)

	// Sessions
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()

	store := session.NewStore(cfg.SessionTTL, cfg.MaxSessions)
	go store.Run(sweepCtx, cfg.SessionSweepEvery)

	// Router
	router := server.NewRouter(session.NewHandler(store, cfg.LocaleTag()))

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.String("service", cfg.ServiceName),
			zap.String("locale", cfg.Locale),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	waitForShutdown(srv, cfg)
}

func waitForShutdown(srv *http.Server, cfg config.Config) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Error("server shutdown", zap.Error(err))
	}
}
