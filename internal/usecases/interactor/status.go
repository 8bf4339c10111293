package interactor

import (
	"context"
	"fmt"
	"github.com/mufasadev/txwebhook/internal/domain/models"
	"github.com/mufasadev/txwebhook/internal/domain/repositories"
	apperrors "github.com/mufasadev/txwebhook/internal/errors"
	"github.com/mufasadev/txwebhook/pkg/log"
	"github.com/rs/zerolog"
	"strings"
	"time"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// StatusInteractor serves read-only views of the transaction store.
type StatusInteractor struct {
	transactionRepository repositories.TransactionRepository
	logger                *zerolog.Logger
}

func NewStatusInteractor(transactionRepository repositories.TransactionRepository) *StatusInteractor {
	l := log.GetLogger()
	return &StatusInteractor{
		transactionRepository: transactionRepository,
		logger:                &l,
	}
}

// Query returns the current record for transactionID.
func (s *StatusInteractor) Query(ctx context.Context, transactionID string) (*models.Transaction, error) {
	transaction, err := s.transactionRepository.GetByTransactionID(ctx, transactionID)
	if err != nil {
		s.logger.Error().Err(err).Str("transaction_id", transactionID).Msg(apperrors.ErrFailedQueryTransaction)
		return nil, err
	}
	if transaction == nil {
		return nil, apperrors.NewNotFoundError(transactionResource, transactionID)
	}
	return transaction, nil
}

// List returns up to limit transactions in status, oldest first. A zero limit
// selects DefaultListLimit.
func (s *StatusInteractor) List(ctx context.Context, status string, limit int) (models.Status, []*models.Transaction, error) {
	st := models.Status(strings.ToUpper(strings.TrimSpace(status)))
	if !st.IsValid() {
		verr := apperrors.NewValidationError()
		verr.Add("status", fmt.Sprintf("must be one of %s, %s, %s", models.StatusProcessing, models.StatusProcessed, models.StatusFailed))
		return "", nil, verr
	}

	switch {
	case limit == 0:
		limit = DefaultListLimit
	case limit < 0 || limit > MaxListLimit:
		verr := apperrors.NewValidationError()
		verr.Add("limit", fmt.Sprintf("must be between 1 and %d", MaxListLimit))
		return "", nil, verr
	}

	list, err := s.transactionRepository.ListByStatus(ctx, st, time.Time{}, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("status", string(st)).Msg(apperrors.ErrFailedListTransactions)
		return "", nil, err
	}
	return st, list, nil
}

func (s *StatusInteractor) Stats(ctx context.Context) (map[models.Status]int64, error) {
	counts, err := s.transactionRepository.CountByStatus(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg(apperrors.ErrFailedListTransactions)
		return nil, err
	}
	return counts, nil
}

// Probe reports whether the store answers.
func (s *StatusInteractor) Probe(ctx context.Context) error {
	return s.transactionRepository.Ping(ctx)
}
