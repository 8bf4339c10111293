package repositories

import (
	"context"
	"github.com/mufasadev/txwebhook/internal/domain/models"
	"time"
)

const (
	SerializationError   = "40001"
	UniqueViolationError = "23505"
)

// TransactionRepository is the durable transaction store. Every cross-request
// guarantee (admit-once, terminal-transition-once) is expressed as a single
// atomic statement against it.
type TransactionRepository interface {
	// InsertIfAbsent stores transaction unless a record with the same
	// transaction id exists. inserted is false for an existing key.
	InsertIfAbsent(ctx context.Context, transaction *models.Transaction) (inserted bool, err error)
	// CompleteTransaction moves a PROCESSING record to a terminal status.
	// transitioned is false when the record is missing or already terminal.
	CompleteTransaction(ctx context.Context, transactionID string, status models.Status, processedAt time.Time) (transitioned bool, err error)
	// GetByTransactionID returns nil, nil when no record exists.
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error)
	ListByStatus(ctx context.Context, status models.Status, createdBefore time.Time, limit int) ([]*models.Transaction, error)
	CountByStatus(ctx context.Context) (map[models.Status]int64, error)
	Ping(ctx context.Context) error
}
