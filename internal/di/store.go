package di

import (
	"context"
	"fmt"
	"github.com/mufasadev/txwebhook/internal/config"
	"github.com/mufasadev/txwebhook/internal/domain/repositories"
	"github.com/mufasadev/txwebhook/internal/errors"
	"github.com/mufasadev/txwebhook/internal/infrastructure/database/db_client"
	dbrepo "github.com/mufasadev/txwebhook/internal/infrastructure/database/repositories"
	"github.com/mufasadev/txwebhook/pkg/log"
)

// OpenStore connects the transaction store selected by cfg.StoreDriver and
// applies the schema when cfg.Migrate is set. The returned func releases it.
func OpenStore(ctx context.Context, cfg *config.Config) (repositories.TransactionRepository, func(), error) {
	logger := log.GetLogger()

	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		client := db_client.NewPGClient(cfg.PostgreSQL)
		db, err := client.Connect()
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", errors.ErrorFailedToConnectToTheDatabase, err)
		}
		if cfg.Migrate {
			if err = client.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("%s: %w", errors.ErrorFailedToMigrateTheDatabase, err)
			}
		}
		logger.Info().Str("host", cfg.PostgreSQL.Host).Str("database", cfg.Database).Msg("Connected to PostgreSQL")
		return dbrepo.NewTransactionRepositoryImpl(db), db.Close, nil

	case config.StoreDriverSQLite:
		client := db_client.NewSQLiteClient(cfg.Store)
		db, err := client.Connect()
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", errors.ErrorFailedToConnectToTheDatabase, err)
		}
		if cfg.Migrate {
			if err = client.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("%s: %w", errors.ErrorFailedToMigrateTheDatabase, err)
			}
		}
		logger.Info().Str("path", cfg.SQLitePath).Msg("Opened SQLite store")
		return dbrepo.NewSQLiteTransactionRepository(db), func() { db.Close() }, nil

	case config.StoreDriverRedis:
		rdb, err := db_client.NewRedisClient(cfg.Redis, cfg.MaxConnAttempts).Connect()
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", errors.ErrorFailedToConnectToTheDatabase, err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Str("prefix", cfg.KeyPrefix).Msg("Connected to Redis")
		return dbrepo.NewRedisTransactionRepository(rdb, cfg.KeyPrefix), func() { rdb.Close() }, nil

	case config.StoreDriverMemory:
		logger.Warn().Msg("Using in-memory store; records are lost on restart and not shared between instances")
		return dbrepo.NewMemoryTransactionRepository(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
