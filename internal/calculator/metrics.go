package calculator

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments, initialized once via InitMetrics().
var (
	actionsCounter  metric.Int64Counter
	ignoredCounter  metric.Int64Counter
	evalCounter     metric.Int64Counter
	reduceHistogram metric.Float64Histogram
	errorCounter    metric.Int64Counter
	resultGauge     metric.Float64Gauge
	sessionsUpDown  metric.Int64UpDownCounter
)

// InitMetrics registers custom OTel metric instruments for the calculator domain.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	actionsCounter, err = meter.Int64Counter("calculator.actions.total",
		metric.WithDescription("Total number of calculator actions dispatched"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return fmt.Errorf("creating actions counter: %w", err)
	}

	ignoredCounter, err = meter.Int64Counter("calculator.actions.ignored",
		metric.WithDescription("Actions that left the calculator state unchanged"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return fmt.Errorf("creating ignored counter: %w", err)
	}

	evalCounter, err = meter.Int64Counter("calculator.evaluations.total",
		metric.WithDescription("Total number of pending operations evaluated"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return fmt.Errorf("creating evaluations counter: %w", err)
	}

	reduceHistogram, err = meter.Float64Histogram("calculator.reduce.duration",
		metric.WithDescription("Duration of calculator state transitions in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1),
	)
	if err != nil {
		return fmt.Errorf("creating reduce histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of calculator errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The result of the last finite evaluation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	sessionsUpDown, err = meter.Int64UpDownCounter("calculator.sessions.active",
		metric.WithDescription("Number of live calculator sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return fmt.Errorf("creating sessions counter: %w", err)
	}

	return nil
}

// ErrorCounter returns the calculator error counter for use with
// observability.RecordError outside this package.
func ErrorCounter() metric.Int64Counter {
	return errorCounter
}
