package interactor

import (
	"context"
	"github.com/mufasadev/txwebhook/internal/domain/models"
	"github.com/mufasadev/txwebhook/internal/domain/repositories"
	"github.com/mufasadev/txwebhook/internal/metrics"
	"github.com/mufasadev/txwebhook/pkg/log"
	"github.com/rs/zerolog"
	"time"
)

// recheckTimeout bounds the read that resolves an insert whose outcome was
// lost to a cancelled context.
const recheckTimeout = 2 * time.Second

// Admission is the outcome of offering a transaction to the IdempotencyGuard.
type Admission int

const (
	AdmissionAccepted Admission = iota + 1
	AdmissionDuplicate
)

func (a Admission) String() string {
	switch a {
	case AdmissionAccepted:
		return "accepted"
	case AdmissionDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// IdempotencyGuard decides whether a delivery is the first for its
// transaction ID. The decision is a single atomic insert in the store, so it
// holds across goroutines and across service instances sharing the store.
type IdempotencyGuard struct {
	transactionRepository repositories.TransactionRepository
	now                   func() time.Time
	logger                *zerolog.Logger
}

func NewIdempotencyGuard(transactionRepository repositories.TransactionRepository) *IdempotencyGuard {
	l := log.GetLogger()
	return &IdempotencyGuard{
		transactionRepository: transactionRepository,
		now:                   time.Now,
		logger:                &l,
	}
}

// Admit stores transaction as PROCESSING if its ID is new. The caller's
// transaction is updated with the stored status and creation time.
func (g *IdempotencyGuard) Admit(ctx context.Context, transaction *models.Transaction) (Admission, error) {
	transaction.Status = models.StatusProcessing
	transaction.CreatedAt = g.now().UTC().Truncate(time.Microsecond)
	transaction.ProcessedAt = nil

	inserted, err := g.transactionRepository.InsertIfAbsent(ctx, transaction)
	if err != nil && ctx.Err() != nil && g.insertedBy(ctx, transaction) {
		g.logger.Warn().Err(err).Str("transaction_id", transaction.TransactionID).Msg("Insert committed after context ended")
		inserted, err = true, nil
	}
	if err != nil {
		metrics.WebhookAdmissions.WithLabelValues("error").Inc()
		return 0, err
	}

	if !inserted {
		metrics.WebhookAdmissions.WithLabelValues(AdmissionDuplicate.String()).Inc()
		g.logger.Info().Str("transaction_id", transaction.TransactionID).Msg("Duplicate delivery ignored")
		return AdmissionDuplicate, nil
	}

	metrics.WebhookAdmissions.WithLabelValues(AdmissionAccepted.String()).Inc()
	g.logger.Info().Str("transaction_id", transaction.TransactionID).Msg("Transaction admitted")
	return AdmissionAccepted, nil
}

// insertedBy reports whether the stored record for transaction's ID was
// written by this Admit call. The creation time is unique to the call, so a
// match with the same payload means the insert committed.
func (g *IdempotencyGuard) insertedBy(ctx context.Context, transaction *models.Transaction) bool {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recheckTimeout)
	defer cancel()

	stored, err := g.transactionRepository.GetByTransactionID(ctx, transaction.TransactionID)
	if err != nil {
		g.logger.Error().Err(err).Str("transaction_id", transaction.TransactionID).Msg("Failed to recheck transaction")
		return false
	}
	if stored == nil {
		return false
	}

	return stored.CreatedAt.Equal(transaction.CreatedAt) &&
		stored.SourceAccount == transaction.SourceAccount &&
		stored.DestinationAccount == transaction.DestinationAccount &&
		stored.Amount.Equal(transaction.Amount) &&
		stored.Currency == transaction.Currency
}
