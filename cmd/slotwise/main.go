package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/slotwise/adapter/cli"
	"github.com/felixgeelhaar/slotwise/adapter/cli/slots"
	"github.com/felixgeelhaar/slotwise/internal/app"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/slotwise/pkg/config"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		observability.NewLogger(observability.DefaultLogConfig()).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCfg := observability.DefaultLogConfig()
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	logCfg.Format = observability.LogFormat(cfg.LogFormat)
	logCfg.ServiceVersion = cli.Version
	if cfg.IsProduction() {
		logCfg.Format = observability.LogFormatJSON
	}
	logger := observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	metrics := observability.NewInMemoryMetrics()

	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger, metrics)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		// The health command still runs without a container in development
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()

		cliApp = cli.NewApp(
			container.RecommendSlotsHandler,
			container.RecordCompletionHandler,
			container.BookSlotHandler,
			container.FocusStore,
			container,
			container.Health,
		)
		cliApp.SetCurrentUserID(cfg.UserUUID())
		cliApp.SetWorkerFactory(func() (eventbus.Consumer, error) {
			consumer, err := container.NewCompletionConsumer()
			if err != nil {
				return nil, err
			}
			return consumer, nil
		})
	}

	cli.SetApp(cliApp)
	cli.AddCommand(slots.Cmd)

	cli.Execute(ctx)
}
