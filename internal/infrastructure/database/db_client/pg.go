package db_client

import (
	"context"
	"fmt"
	decimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mufasadev/txwebhook/internal/config"
	"github.com/mufasadev/txwebhook/migrations"
	"github.com/mufasadev/txwebhook/pkg/postgresql"
)

type PGClient struct {
	cfg config.PostgreSQL
}

func NewPGClient(cfg config.PostgreSQL) *PGClient {
	return &PGClient{cfg: cfg}
}

// Connect connects to the database and returns a pgxpool.Pool.
func (c *PGClient) Connect() (*pgxpool.Pool, error) {
	pgxConfig, err := pgxpool.ParseConfig(c.cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}

	// Register decimal type
	pgxConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		decimal.Register(conn.TypeMap())
		return nil
	}

	maxAttempts := c.cfg.MaxConnAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	db, err := postgresql.NewClient(pgxConfig, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("postgresql.NewClient: %w", err)
	}

	return db, nil
}

// Migrate creates the transactions table when it does not exist yet.
func (c *PGClient) Migrate(ctx context.Context, db postgresql.Client) error {
	if _, err := db.Exec(ctx, migrations.Postgres); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}
