package backend

import (
	"context"
	"fmt"

	applog "kopimakmur/internal/log"
	"kopimakmur/internal/storage"
	"kopimakmur/internal/storage/memory"
	"kopimakmur/internal/storage/postgres"
)

// Factory opens stores. The logger records which backend was chosen.
type Factory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) *Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(applog.ComponentStorage)}
}

// Open validates config and opens the selected store.
func (f *Factory) Open(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.openSQLite(config)
	case PostgresBackend:
		return f.openPostgres(ctx, config)
	case MemoryBackend:
		return f.openMemory()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *Factory) openSQLite(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &Result{Store: repo, Cleanup: repo.Close}, nil
}

func (f *Factory) openPostgres(ctx context.Context, config Config) (*Result, error) {
	store, err := postgres.New(ctx, config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
	}

	f.logger.Info("Initialized Postgres backend")
	return &Result{Store: store, Cleanup: store.Close}, nil
}

func (f *Factory) openMemory() (*Result, error) {
	store := memory.New()
	f.logger.Warn("Initialized memory backend, data is lost on restart")
	return &Result{Store: store, Cleanup: store.Close}, nil
}
