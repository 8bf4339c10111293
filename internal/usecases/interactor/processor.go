package interactor

import (
	"context"
	"github.com/mufasadev/txwebhook/internal/domain/models"
	"github.com/mufasadev/txwebhook/internal/domain/repositories"
	apperrors "github.com/mufasadev/txwebhook/internal/errors"
	"github.com/mufasadev/txwebhook/internal/metrics"
	"github.com/mufasadev/txwebhook/pkg/log"
	"github.com/mufasadev/txwebhook/pkg/util/repeat"
	"github.com/rs/zerolog"
	"time"
)

const (
	transactionResource = "transaction"
	storeCallTimeout    = 5 * time.Second
)

// Gateway settles a transaction on the payment network.
type Gateway interface {
	Settle(ctx context.Context, transaction *models.Transaction) error
}

type TransactionProcessor struct {
	transactionRepository repositories.TransactionRepository
	gateway               Gateway
	updateAttempts        int
	updateBackoff         time.Duration
	now                   func() time.Time
	logger                *zerolog.Logger
}

func NewTransactionProcessor(transactionRepository repositories.TransactionRepository, gateway Gateway, updateAttempts int, updateBackoff time.Duration) *TransactionProcessor {
	l := log.GetLogger()
	if updateAttempts < 1 {
		updateAttempts = 1
	}
	return &TransactionProcessor{
		transactionRepository: transactionRepository,
		gateway:               gateway,
		updateAttempts:        updateAttempts,
		updateBackoff:         updateBackoff,
		now:                   time.Now,
		logger:                &l,
	}
}

// Process settles one admitted transaction and records its terminal status.
// A cancelled ctx stops processing without a transition. Running Process twice
// for the same ID never overwrites the first terminal status.
func (p *TransactionProcessor) Process(ctx context.Context, transactionID string) error {
	logger := p.logger.With().Str("transaction_id", transactionID).Logger()

	transaction, err := p.load(ctx, transactionID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load transaction for processing")
		return err
	}
	if transaction == nil {
		logger.Warn().Msg("Transaction to process does not exist")
		return apperrors.NewNotFoundError(transactionResource, transactionID)
	}
	if transaction.Status.IsTerminal() {
		logger.Info().Str("status", string(transaction.Status)).Msg("Transaction already processed")
		return nil
	}

	target := models.StatusProcessed
	if err = p.gateway.Settle(ctx, transaction); err != nil {
		if ctx.Err() != nil {
			logger.Warn().Err(err).Msg("Processing interrupted, transaction left PROCESSING")
			return ctx.Err()
		}
		logger.Info().Err(err).Msg("Settlement failed")
		target = models.StatusFailed
	}

	processedAt := p.now().UTC()
	// The settlement already happened; its outcome is persisted even if ctx
	// is cancelled meanwhile. Attempts and per-call timeouts bound the wait.
	updateCtx := context.WithoutCancel(ctx)

	var transitioned bool
	err = repeat.WithBackoff(updateCtx, func(attempt int) error {
		if attempt > 1 {
			metrics.UpdateRetries.Inc()
			logger.Warn().Int("attempt", attempt).Msg("Retrying terminal status update")
		}
		callCtx, cancel := context.WithTimeout(updateCtx, storeCallTimeout)
		defer cancel()

		var uerr error
		transitioned, uerr = p.transactionRepository.CompleteTransaction(callCtx, transactionID, target, processedAt)
		return uerr
	}, p.updateAttempts, p.updateBackoff, apperrors.IsStoreUnavailable)
	if err != nil {
		metrics.TransitionsAbandoned.Inc()
		logger.Error().Err(err).
			Str("status", string(target)).
			Int("attempts", p.updateAttempts).
			Msg("Failed to persist terminal status, transaction left PROCESSING")
		return err
	}

	if !transitioned {
		logger.Warn().Str("status", string(target)).Msg("Transaction reached a terminal status elsewhere")
		return nil
	}

	metrics.TransactionsCompleted.WithLabelValues(string(target)).Inc()
	logger.Info().Str("status", string(target)).Msg("Transaction processed")
	return nil
}

func (p *TransactionProcessor) load(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var transaction *models.Transaction
	err := repeat.WithBackoff(ctx, func(int) error {
		callCtx, cancel := context.WithTimeout(ctx, storeCallTimeout)
		defer cancel()

		var err error
		transaction, err = p.transactionRepository.GetByTransactionID(callCtx, transactionID)
		return err
	}, p.updateAttempts, p.updateBackoff, apperrors.IsStoreUnavailable)
	return transaction, err
}
