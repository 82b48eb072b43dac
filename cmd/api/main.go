package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/server"
)

func main() {

	ctx := context.Background()

	// Config
	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Logger
	if err := observability.InitLogger(cfg.Log.Level); err != nil {
		panic(err)
	}

	// Tracing, metrics, logs
	telemetryShutdown, err := initTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		observability.Logger.Fatal("telemetry setup failed", zap.Error(err))
	}

	// Service
	store := calculator.NewMemoryStore(cfg.Service.CacheCapacity)
	svc := calculator.NewService(store,
		calculator.WithAddDelay(cfg.Service.AddDelay),
		calculator.WithLogger(observability.Logger.Named("calculator")),
	)

	// Router
	router := server.NewRouter(cfg.Server.BasePath, svc)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", srv.Addr),
			zap.String("base_path", cfg.Server.BasePath),
			zap.Duration("add_delay", cfg.Service.AddDelay),
			zap.Bool("telemetry", cfg.Telemetry.Enabled),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Drain requests first, then flush telemetry.
	wait := gfshutdown.GracefulShutdown(ctx, cfg.Server.ShutdownTimeout, map[string]gfshutdown.Operation{
		"api": func(ctx context.Context) error {
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			observability.Logger.Info("server stopped", zap.Int("cached_results", store.Len()))
			return telemetryShutdown(ctx)
		},
	})

	exitCode := <-wait
	observability.SyncLogger()
	os.Exit(exitCode)
}
