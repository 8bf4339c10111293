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

type StaleTransactionInteractor struct {
	transactionRepository repositories.TransactionRepository
	staleAfter            time.Duration
	limit                 int
	now                   func() time.Time
	logger                *zerolog.Logger
}

// NewStaleTransactionInteractor creates a new StaleTransactionInteractor
func NewStaleTransactionInteractor(transactionRepository repositories.TransactionRepository, staleAfter time.Duration, limit int) *StaleTransactionInteractor {
	l := log.GetLogger()
	return &StaleTransactionInteractor{
		transactionRepository: transactionRepository,
		staleAfter:            staleAfter,
		limit:                 limit,
		now:                   time.Now,
		logger:                &l,
	}
}

// Execute reports transactions that stayed PROCESSING longer than staleAfter.
// It only reports; the records are left untouched.
func (s *StaleTransactionInteractor) Execute(ctx context.Context) ([]*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, storeCallTimeout)
	defer cancel()

	olderThan := s.now().UTC().Add(-s.staleAfter)
	stale, err := s.transactionRepository.ListByStatus(ctx, models.StatusProcessing, olderThan, s.limit)
	if err != nil {
		return nil, err
	}

	metrics.StaleProcessing.Set(float64(len(stale)))
	for _, t := range stale {
		s.logger.Warn().
			Str("transaction_id", t.TransactionID).
			Time("created_at", t.CreatedAt).
			Dur("age", s.now().Sub(t.CreatedAt)).
			Msg("Transaction stuck in PROCESSING")
	}
	if len(stale) > 0 {
		s.logger.Info().Int("count", len(stale)).Msg("Stale transactions found")
	}

	return stale, nil
}
