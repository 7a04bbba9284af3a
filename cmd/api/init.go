package main

import (
	"context"
	"errors"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
)

type shutdownFunc func(context.Context) error

// initTelemetry initialises the providers enabled in cfg and the
// application-specific metric instruments. The returned function shuts every
// started provider down.
func initTelemetry(ctx context.Context, cfg config.Config) (shutdownFunc, error) {
	var shutdowns []shutdownFunc

	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	if cfg.OTLPLogsEnabled {
		s, err := observability.InitLogging(ctx, cfg.ServiceName)
		if err != nil {
			return nil, err
		}
		shutdowns = append(shutdowns, s)
	}

	if cfg.TracingEnabled {
		s, err := observability.InitTracing(ctx, cfg.ServiceName)
		if err != nil {
			return nil, errors.Join(err, shutdown(ctx))
		}
		shutdowns = append(shutdowns, s)
	}

	if cfg.MetricsEnabled {
		s, err := observability.InitMetrics(ctx, cfg.ServiceName)
		if err != nil {
			return nil, errors.Join(err, shutdown(ctx))
		}
		shutdowns = append(shutdowns, s)
	}

	// Domain instruments bind to whichever meter provider is installed,
	// the no-op global one included.
	if err := calculator.InitMetrics(); err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}

	return shutdown, nil
}
