package repositories

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mufasadev/txwebhook/internal/domain/models"
	"github.com/mufasadev/txwebhook/internal/domain/repositories"
	apperrors "github.com/mufasadev/txwebhook/internal/errors"
	"github.com/mufasadev/txwebhook/pkg/log"
	"github.com/mufasadev/txwebhook/pkg/postgresql"
	"github.com/rs/zerolog"
	"time"
)

// maxSerializationRetries bounds the retry loop on SQLSTATE 40001.
const maxSerializationRetries = 10

type TransactionRepositoryImpl struct {
	db     postgresql.Client
	logger *zerolog.Logger
}

// NewTransactionRepositoryImpl creates new instance of TransactionRepositoryImpl.
func NewTransactionRepositoryImpl(db postgresql.Client) repositories.TransactionRepository {
	l := log.GetLogger()
	return &TransactionRepositoryImpl{
		db:     db,
		logger: &l,
	}
}

const insertTransaction = `
INSERT INTO transactions (transaction_id, source_account, destination_account, amount, currency, status, created_at, processed_at)
VALUES ($1, $2, $3, $4::NUMERIC(18,2), $5, $6, $7, NULL)`

// InsertIfAbsent inserts the transaction; the primary key turns a concurrent
// duplicate into a unique violation, which is reported as inserted=false.
func (r *TransactionRepositoryImpl) InsertIfAbsent(ctx context.Context, transaction *models.Transaction) (bool, error) {
	args := []interface{}{
		transaction.TransactionID,
		transaction.SourceAccount,
		transaction.DestinationAccount,
		transaction.Amount,
		transaction.Currency,
		string(transaction.Status),
		transaction.CreatedAt,
	}

	var err error
	for i := 0; i < maxSerializationRetries; i++ {
		_, err = r.db.Exec(ctx, insertTransaction, args...)
		if err == nil {
			return true, nil
		}

		if isSerializationError(err) {
			// retry transaction if serialization error occurs (SQLSTATE 40001)
			continue
		}
		if isUniqueViolation(err) {
			return false, nil
		}
		break
	}

	r.logger.Error().Err(err).Str("transaction_id", transaction.TransactionID).Msg("insert transaction")
	return false, apperrors.NewStoreUnavailableError("insert", err)
}

const completeTransaction = `
UPDATE transactions
SET status = $2, processed_at = $3
WHERE transaction_id = $1 AND status = 'PROCESSING'`

// CompleteTransaction applies the terminal transition as a single conditional update.
func (r *TransactionRepositoryImpl) CompleteTransaction(ctx context.Context, transactionID string, status models.Status, processedAt time.Time) (bool, error) {
	if !status.IsTerminal() {
		return false, fmt.Errorf("complete transaction: %q is not a terminal status", status)
	}

	var (
		tag pgconn.CommandTag
		err error
	)
	for i := 0; i < maxSerializationRetries; i++ {
		tag, err = r.db.Exec(ctx, completeTransaction, transactionID, string(status), processedAt)
		if err == nil {
			return tag.RowsAffected() == 1, nil
		}
		if !isSerializationError(err) {
			break
		}
	}

	return false, apperrors.NewStoreUnavailableError("complete", err)
}

const selectTransaction = `
SELECT transaction_id, source_account, destination_account, amount, currency, status, created_at, processed_at
FROM transactions`

// GetByTransactionID returns transaction by transaction id.
func (r *TransactionRepositoryImpl) GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	tx, err := scanTransaction(r.db.QueryRow(ctx, selectTransaction+" WHERE transaction_id = $1", transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewStoreUnavailableError("get", err)
	}

	return tx, nil
}

// ListByStatus returns up to limit records in status, oldest first. A zero
// createdBefore disables the age filter, a non-positive limit the row cap.
func (r *TransactionRepositoryImpl) ListByStatus(ctx context.Context, status models.Status, createdBefore time.Time, limit int) ([]*models.Transaction, error) {
	var before *time.Time
	if !createdBefore.IsZero() {
		before = &createdBefore
	}
	var maxRows *int
	if limit > 0 {
		maxRows = &limit
	}

	rows, err := r.db.Query(ctx,
		selectTransaction+" WHERE status = $1 AND ($2::TIMESTAMPTZ IS NULL OR created_at < $2) ORDER BY created_at LIMIT $3",
		string(status), before, maxRows,
	)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("list", err)
	}
	defer rows.Close()

	result := make([]*models.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
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

// CountByStatus returns the number of records per status.
func (r *TransactionRepositoryImpl) CountByStatus(ctx context.Context) (map[models.Status]int64, error) {
	rows, err := r.db.Query(ctx, "SELECT status, COUNT(*) FROM transactions GROUP BY status")
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

func (r *TransactionRepositoryImpl) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return apperrors.NewStoreUnavailableError("ping", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		tx     models.Transaction
		status string
	)
	err := row.Scan(
		&tx.TransactionID,
		&tx.SourceAccount,
		&tx.DestinationAccount,
		&tx.Amount,
		&tx.Currency,
		&status,
		&tx.CreatedAt,
		&tx.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	tx.Status = models.Status(status)
	tx.CreatedAt = tx.CreatedAt.UTC()
	if tx.ProcessedAt != nil {
		p := tx.ProcessedAt.UTC()
		tx.ProcessedAt = &p
	}

	return &tx, nil
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == repositories.SerializationError
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == repositories.UniqueViolationError
}
