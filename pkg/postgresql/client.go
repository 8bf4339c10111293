package postgresql

import (
	"context"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mufasadev/txwebhook/pkg/util/repeat"
	"time"
)

const ClientTimeout = 5 * time.Second

// Client is the subset of *pgxpool.Pool used by repositories.
type Client interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Ping(ctx context.Context) error
}

var _ Client = (*pgxpool.Pool)(nil)

// NewClient opens a pool and pings it, retrying up to MaxConnAttempts times.
func NewClient(cfg *pgxpool.Config, MaxConnAttempts int) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	err = repeat.Repeat(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), ClientTimeout)
		defer cancel()

		pool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return err
		}

		err = pool.Ping(ctx)
		if err != nil {
			pool.Close()
			return err
		}

		return nil
	}, MaxConnAttempts, ClientTimeout)

	if err != nil {
		return nil, err
	}

	return pool, err
}
