package interactor

import (
	"context"
	"fmt"
	"github.com/mufasadev/txwebhook/internal/metrics"
	"github.com/mufasadev/txwebhook/internal/usecases/dtos"
	"github.com/mufasadev/txwebhook/pkg/log"
	"github.com/rs/zerolog"
	"time"
)

// Dispatcher hands an admitted transaction to background processing.
// Dispatch must return immediately.
type Dispatcher interface {
	Dispatch(transactionID string)
}

type WebhookInteractor struct {
	guard           *IdempotencyGuard
	dispatcher      Dispatcher
	ackDeadline     time.Duration
	defaultCurrency string
	logger          *zerolog.Logger
}

func NewWebhookInteractor(guard *IdempotencyGuard, dispatcher Dispatcher, ackDeadline time.Duration, defaultCurrency string) *WebhookInteractor {
	l := log.GetLogger()
	return &WebhookInteractor{
		guard:           guard,
		dispatcher:      dispatcher,
		ackDeadline:     ackDeadline,
		defaultCurrency: defaultCurrency,
		logger:          &l,
	}
}

// Receive validates and admits a webhook delivery. Only the first delivery of
// a transaction ID is dispatched for processing; the processing itself never
// runs on the caller's goroutine.
func (i *WebhookInteractor) Receive(ctx context.Context, dto *dtos.WebhookDTO) (*dtos.AckResponse, Admission, error) {
	start := time.Now()
	defer func() {
		metrics.AckDuration.Observe(time.Since(start).Seconds())
	}()

	transaction, err := ValidateWebhook(dto, i.defaultCurrency)
	if err != nil {
		metrics.WebhookValidationFailures.Inc()
		i.logger.Debug().Err(err).Str("transaction_id", dto.TransactionID).Msg("Webhook rejected")
		return nil, 0, err
	}

	if i.ackDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.ackDeadline)
		defer cancel()
	}

	admission, err := i.guard.Admit(ctx, transaction)
	if err != nil {
		i.logger.Error().Err(err).Str("transaction_id", transaction.TransactionID).Msg("Failed to admit transaction")
		return nil, 0, err
	}

	ack := &dtos.AckResponse{
		TransactionID: transaction.TransactionID,
		Timestamp:     time.Now().UTC(),
	}

	switch admission {
	case AdmissionAccepted:
		i.dispatcher.Dispatch(transaction.TransactionID)
		ack.Status = dtos.AckStatusAccepted
		ack.Message = fmt.Sprintf("Transaction %s accepted for processing", transaction.TransactionID)
	case AdmissionDuplicate:
		ack.Status = dtos.AckStatusDuplicate
		ack.Message = fmt.Sprintf("Transaction %s already received", transaction.TransactionID)
	}

	return ack, admission, nil
}
