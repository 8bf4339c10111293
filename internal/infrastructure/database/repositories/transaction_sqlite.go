package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/mattn/go-sqlite3"
	"github.com/mufasadev/txwebhook/internal/domain/models"
	"github.com/mufasadev/txwebhook/internal/domain/repositories"
	apperrors "github.com/mufasadev/txwebhook/internal/errors"
	"github.com/mufasadev/txwebhook/pkg/log"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"time"
)

// sqliteTimeLayout is fixed-width so text comparison orders like time.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteTransactionRepository struct {
	db     *sql.DB
	logger *zerolog.Logger
}

// NewSQLiteTransactionRepository creates a store backed by a SQLite database.
func NewSQLiteTransactionRepository(db *sql.DB) repositories.TransactionRepository {
	l := log.GetLogger()
	return &SQLiteTransactionRepository{
		db:     db,
		logger: &l,
	}
}

func (r *SQLiteTransactionRepository) InsertIfAbsent(ctx context.Context, transaction *models.Transaction) (bool, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (transaction_id, source_account, destination_account, amount, currency, status, created_at, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, NULL)`,
		transaction.TransactionID,
		transaction.SourceAccount,
		transaction.DestinationAccount,
		transaction.Amount.StringFixed(2),
		transaction.Currency,
		string(transaction.Status),
		formatSQLiteTime(transaction.CreatedAt),
	)
	if err == nil {
		return true, nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique) {
		return false, nil
	}

	r.logger.Error().Err(err).Str("transaction_id", transaction.TransactionID).Msg("insert transaction")
	return false, apperrors.NewStoreUnavailableError("insert", err)
}

func (r *SQLiteTransactionRepository) CompleteTransaction(ctx context.Context, transactionID string, status models.Status, processedAt time.Time) (bool, error) {
	if !status.IsTerminal() {
		return false, fmt.Errorf("complete transaction: %q is not a terminal status", status)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET status = ?, processed_at = ? WHERE transaction_id = ? AND status = 'PROCESSING'`,
		string(status), formatSQLiteTime(processedAt), transactionID,
	)
	if err != nil {
		return false, apperrors.NewStoreUnavailableError("complete", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.NewStoreUnavailableError("complete", err)
	}

	return n == 1, nil
}

const sqliteSelectTransaction = `
SELECT transaction_id, source_account, destination_account, amount, currency, status, created_at, processed_at
FROM transactions`

func (r *SQLiteTransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	tx, err := scanSQLiteTransaction(r.db.QueryRowContext(ctx, sqliteSelectTransaction+" WHERE transaction_id = ?", transactionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewStoreUnavailableError("get", err)
	}

	return tx, nil
}

func (r *SQLiteTransactionRepository) ListByStatus(ctx context.Context, status models.Status, createdBefore time.Time, limit int) ([]*models.Transaction, error) {
	query := sqliteSelectTransaction + " WHERE status = ?"
	args := []interface{}{string(status)}
	if !createdBefore.IsZero() {
		query += " AND created_at < ?"
		args = append(args, formatSQLiteTime(createdBefore))
	}
	query += " ORDER BY created_at"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("list", err)
	}
	defer rows.Close()

	result := make([]*models.Transaction, 0)
	for rows.Next() {
		tx, err := scanSQLiteTransaction(rows)
		if err != nil {
			return nil, apperrors.NewStoreUnavailableError("list", err)
		}
		result = append(result, tx)
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailableError("list", err)
	}

	return result, nil
}

func (r *SQLiteTransactionRepository) CountByStatus(ctx context.Context) (map[models.Status]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM transactions GROUP BY status")
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("count", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int64, len(models.ValidStatuses))
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err = rows.Scan(&status, &n); err != nil {
			return nil, apperrors.NewStoreUnavailableError("count", err)
		}
		counts[models.Status(status)] = n
	}

	if err = rows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailableError("count", err)
	}

	return counts, nil
}

func (r *SQLiteTransactionRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return apperrors.NewStoreUnavailableError("ping", err)
	}
	return nil
}

func scanSQLiteTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		tx          models.Transaction
		amount      string
		status      string
		createdAt   string
		processedAt sql.NullString
	)
	err := row.Scan(
		&tx.TransactionID,
		&tx.SourceAccount,
		&tx.DestinationAccount,
		&amount,
		&tx.Currency,
		&status,
		&createdAt,
		&processedAt,
	)
	if err != nil {
		return nil, err
	}

	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if tx.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if processedAt.Valid {
		p, err := time.Parse(sqliteTimeLayout, processedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse processed_at %q: %w", processedAt.String, err)
		}
		tx.ProcessedAt = &p
	}
	tx.Status = models.Status(status)

	return &tx, nil
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}
