package calculator

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric instruments. They start as no-ops so the package is usable before
// InitMetrics runs.
var (
	opsCounter   metric.Int64Counter     = noop.Int64Counter{}
	opsHistogram metric.Float64Histogram = noop.Float64Histogram{}
	errorCounter metric.Int64Counter     = noop.Int64Counter{}
	resultGauge  metric.Float64Gauge     = noop.Float64Gauge{}
	cacheHits    metric.Int64Counter     = noop.Int64Counter{}
	cacheMisses  metric.Int64Counter     = noop.Int64Counter{}
)

// InitMetrics registers the calculator's OTel instruments on the global
// meter provider. Call it once at startup, after observability.InitMetrics.
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	opsCounter, err = meter.Int64Counter("calculator.operations.total",
		metric.WithDescription("Total number of calculator operations performed"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return fmt.Errorf("creating ops counter: %w", err)
	}

	// Uncached adds sleep for the configured delay, hence the long tail.
	opsHistogram, err = meter.Float64Histogram("calculator.operation.duration",
		metric.WithDescription("Duration of calculator operations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.1, 1, 10, 100, 500, 1000, 2500),
	)
	if err != nil {
		return fmt.Errorf("creating ops histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of calculator errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The result of the last calculator operation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	cacheHits, err = meter.Int64Counter("calculator.cache.hits",
		metric.WithDescription("Results served from the result cache"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return fmt.Errorf("creating cache hit counter: %w", err)
	}

	cacheMisses, err = meter.Int64Counter("calculator.cache.misses",
		metric.WithDescription("Results that had to be computed"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return fmt.Errorf("creating cache miss counter: %w", err)
	}

	return nil
}
