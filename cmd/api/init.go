package main

import (
	"context"
	"errors"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
)

type shutdownFunc func(context.Context) error

// initTelemetry starts the OTLP providers when telemetry is enabled and
// registers the calculator instruments. Without telemetry the instruments
// bind to the global no-op meter.
func initTelemetry(ctx context.Context, cfg config.TelemetryConfig) (shutdownFunc, error) {
	var shutdowns []shutdownFunc
	shutdownAll := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	if cfg.Enabled {
		// Tracing
		traceShutdown, err := observability.InitTracing(ctx, cfg.ServiceName)
		if err != nil {
			return nil, err
		}
		shutdowns = append(shutdowns, traceShutdown)

		// Metrics
		metricShutdown, err := initMetrics(ctx, cfg.ServiceName)
		if err != nil {
			return nil, errors.Join(err, shutdownAll(ctx))
		}
		shutdowns = append(shutdowns, metricShutdown)

		// Logs
		if cfg.ExportLogs {
			logShutdown, err := observability.InitLogging(ctx, cfg.ServiceName)
			if err != nil {
				return nil, errors.Join(err, shutdownAll(ctx))
			}
			shutdowns = append(shutdowns, logShutdown)
		}

		return shutdownAll, nil
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, err
	}

	return shutdownAll, nil
}

// initMetrics initialises the meter provider and the calculator's
// instruments on top of it.
func initMetrics(ctx context.Context, serviceName string) (shutdownFunc, error) {
	shutdown, err := observability.InitMetrics(ctx, serviceName)
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}

	return shutdown, nil
}
