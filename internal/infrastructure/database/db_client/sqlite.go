package db_client

import (
	"context"
	"database/sql"
	"fmt"
	"github.com/mufasadev/txwebhook/internal/config"
	"github.com/mufasadev/txwebhook/migrations"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteClient struct {
	cfg config.Store
}

func NewSQLiteClient(cfg config.Store) *SQLiteClient {
	return &SQLiteClient{cfg: cfg}
}

// Connect opens the database file, creating its directory when needed.
func (c *SQLiteClient) Connect() (*sql.DB, error) {
	path := c.cfg.SQLitePath
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	// single writer; statements are short so readers queue behind it
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}

	return db, nil
}

// Migrate creates the transactions table when it does not exist yet.
func (c *SQLiteClient) Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, migrations.SQLite); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}
