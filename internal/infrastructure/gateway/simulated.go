// Package gateway stands in for the payment network a transaction is settled on.
package gateway

import (
	"context"
	"github.com/mufasadev/txwebhook/internal/config"
	"github.com/mufasadev/txwebhook/internal/domain/models"
	apperrors "github.com/mufasadev/txwebhook/internal/errors"
	"github.com/mufasadev/txwebhook/pkg/log"
	"github.com/rs/zerolog"
	"math/rand"
	"time"
)

// SimulatedGateway waits for a fixed delay and then settles the transaction,
// failing a configurable share of them.
type SimulatedGateway struct {
	delay       time.Duration
	failureRate float64
	random      func() float64
	logger      *zerolog.Logger
}

func NewSimulatedGateway(cfg config.Processor) *SimulatedGateway {
	l := log.GetLogger()
	return &SimulatedGateway{
		delay:       cfg.Delay,
		failureRate: cfg.FailureRate,
		random:      rand.Float64,
		logger:      &l,
	}
}

// Settle blocks for the configured delay. It returns ctx.Err() when ctx ends
// first and a *errors.SettlementError when the network rejects the payment.
func (g *SimulatedGateway) Settle(ctx context.Context, transaction *models.Transaction) error {
	g.logger.Debug().
		Str("transaction_id", transaction.TransactionID).
		Str("amount", transaction.Amount.StringFixed(2)).
		Str("currency", transaction.Currency).
		Dur("delay", g.delay).
		Msg("Settling transaction")

	timer := time.NewTimer(g.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	if !transaction.Amount.IsPositive() {
		return apperrors.NewSettlementError("invalid transaction amount")
	}
	if g.failureRate > 0 && g.random() < g.failureRate {
		return apperrors.NewSettlementError("declined by payment network")
	}

	return nil
}
