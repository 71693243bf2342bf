package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"kopimakmur/internal/amqp"
	"kopimakmur/internal/backend"
	"kopimakmur/internal/cli"
	"kopimakmur/internal/config"
	applog "kopimakmur/internal/log"
	gsheet "kopimakmur/internal/sheets/google"
	"kopimakmur/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateSync)

	ctx := cli.GracefulShutdown(logger, shutdownTimeout, nil)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).Open(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Store cleanup error", "error", err)
		}
	}()

	mirror, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets mirror", "error", err)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	syncer := worker.NewLedgerSync(mirror, result.Store)

	// A failed backfill is not fatal; the next create or update event
	// repairs the affected rows.
	if err := syncer.Backfill(ctx); err != nil {
		logger.Warn("Initial backfill incomplete", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Ledger sync worker started",
			"exchange", cfg.AMQPExchange,
			"queue", cfg.AMQPQueue,
			"sheet", cfg.GoogleSheetName)
		return client.ConsumeLedgerEvents(gctx, syncer.HandleLedgerEvent)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Ledger sync worker stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("Ledger sync worker stopped gracefully")
}
