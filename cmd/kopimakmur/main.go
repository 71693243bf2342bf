package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"kopimakmur/internal/amqp"
	"kopimakmur/internal/auth"
	"kopimakmur/internal/backend"
	"kopimakmur/internal/cli"
	"kopimakmur/internal/config"
	apphttp "kopimakmur/internal/http"
	applog "kopimakmur/internal/log"
	"kopimakmur/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).Open(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Store cleanup error", "error", err)
		}
	}()
	store := result.Store

	// Ledger events are optional; the server runs without a broker.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without ledger events", "error", err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("Ledger events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	var seeds *auth.SeedProvider
	if cfg.AuthSeedAccounts {
		seeds = auth.NewSeedProvider(auth.DefaultSeedAccounts())
		logger.Warn("Seed accounts enabled with built-in passwords, do not use in production", "accounts", seeds.Len())
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:         services.NewLedger(store, publisher),
		Users:          services.NewUsers(store),
		Products:       services.NewProducts(store),
		Auth:           auth.NewAuthenticator(seeds, store),
		Sessions:       auth.NewSessionManager(cfg.SecretKey, cfg.SessionTTL, cfg.CookieSecure),
		Ready:          store,
		Logger:         logger,
		LoginRateLimit: cfg.LoginRateLimit,
		CookieSecure:   cfg.CookieSecure,
		TrustedProxies: cfg.TrustedProxies,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", "error", err)
		os.Exit(1)
	}

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx := cli.GracefulShutdown(logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting kopimakmur server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
