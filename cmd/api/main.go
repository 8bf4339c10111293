package main

import (
	"context"
	"github.com/mufasadev/txwebhook/internal/app"
	"github.com/mufasadev/txwebhook/internal/config"
	"github.com/mufasadev/txwebhook/internal/di"
	"github.com/mufasadev/txwebhook/internal/infrastructure/api/routers"
	"github.com/mufasadev/txwebhook/pkg/log"
)

const (
	appName = "txwebhook"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	opts := []log.LoggerOption{log.WithConsoleLogger(), log.WithLevelName(cfg.Level)}
	if cfg.File != "" {
		opts = append(opts, log.WithFileLogger(cfg.File))
	}
	log.Init(appName, opts...)
	logger := log.GetLogger()

	repository, closeStore, err := di.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to open transaction store")
	}
	defer closeStore()

	container := di.NewContainer(ctx, cfg, repository)

	staleTx := app.NewStaleTransactionProcess(container.StaleTransactionInteractor, cfg.Process)
	go staleTx.Run(ctx)

	router := routers.NewRouter(container, cfg.Metrics.Enabled)
	service := app.NewService(cfg)
	service.Run(ctx, router)

	// in-flight processing gets what is left of the shutdown budget; anything
	// still running after that stays PROCESSING
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	container.Dispatcher.Shutdown(shutdownCtx)
	logger.Info().Msg("Background processing stopped")
}
