// Package storage opens the repository backend selected by STORAGE_DRIVER.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/urquest/internal/config"
	"github.com/fastygo/urquest/internal/infrastructure/boltdb"
	pgInfra "github.com/fastygo/urquest/internal/infrastructure/postgres"
	"github.com/fastygo/urquest/repository"
	"github.com/fastygo/urquest/repository/boltstore"
	"github.com/fastygo/urquest/repository/postgres"
)

// Open connects the configured backend. For Postgres, pending migrations are
// applied first when RUN_MIGRATIONS is set.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repository.Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		store := postgres.NewStore(pool)
		store.Close = func() error {
			pgInfra.Close(pool, logger)
			return nil
		}
		return store, nil

	case config.StorageBolt:
		db, err := boltdb.Open(cfg.Storage.BoltPath, logger)
		if err != nil {
			return nil, fmt.Errorf("bolt: %w", err)
		}
		return boltstore.NewStore(db), nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}
