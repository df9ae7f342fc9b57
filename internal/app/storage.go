package app

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/campus_events/internal/config"
	"github.com/Freeeeeet/campus_events/internal/directory"
	"github.com/Freeeeeet/campus_events/internal/repository"
	"github.com/Freeeeeet/campus_events/migrations"
	"go.uber.org/zap"
)

// OpenStore открывает хранилище, выбранное в конфиге.
// Для Postgres перед этим применяются миграции.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		pool, err := repository.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		logger.Info("✅ Connected to PostgreSQL")

		migrator, err := NewMigrator(pool, migrations.FS, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		defer migrator.Close()

		if err := migrator.Run(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return repository.NewPostgresStore(pool), nil

	case config.StorageDriverBadger:
		store, err := repository.OpenBadgerStore(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		logger.Info("✅ Opened Badger store", zap.String("path", cfg.BadgerPath))
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// LoadDirectory поднимает каталог из сохранённого состояния
func LoadDirectory(ctx context.Context, store repository.Store, logger *zap.Logger) (*directory.Directory, error) {
	snapshot, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	dir, err := directory.Restore(snapshot)
	if err != nil {
		return nil, fmt.Errorf("restore directory: %w", err)
	}

	logger.Info("📦 State loaded",
		zap.Int("users", len(snapshot.Users)),
		zap.Int("rooms", len(snapshot.Rooms)),
		zap.Int("events", len(snapshot.Events)),
	)
	return dir, nil
}
