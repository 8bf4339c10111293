package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/mufasadev/txwebhook/internal/config"
	"github.com/mufasadev/txwebhook/internal/domain/models"
	apperrors "github.com/mufasadev/txwebhook/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func transaction(amount string) *models.Transaction {
	return &models.Transaction{
		TransactionID: "txn_abc123def456",
		Amount:        decimal.RequireFromString(amount),
		Currency:      "INR",
		Status:        models.StatusProcessing,
	}
}

func TestSimulatedGatewaySettle(t *testing.T) {
	t.Run("success_after_delay", func(t *testing.T) {
		g := NewSimulatedGateway(config.Processor{Delay: 20 * time.Millisecond})
		start := time.Now()

		err := g.Settle(context.Background(), transaction("1500.00"))

		assert.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("declined", func(t *testing.T) {
		g := NewSimulatedGateway(config.Processor{FailureRate: 0.5})
		g.random = func() float64 { return 0.1 }

		err := g.Settle(context.Background(), transaction("10.00"))

		var settlement *apperrors.SettlementError
		assert.ErrorAs(t, err, &settlement)
	})

	t.Run("not_declined_above_rate", func(t *testing.T) {
		g := NewSimulatedGateway(config.Processor{FailureRate: 0.5})
		g.random = func() float64 { return 0.9 }

		assert.NoError(t, g.Settle(context.Background(), transaction("10.00")))
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		g := NewSimulatedGateway(config.Processor{})

		var settlement *apperrors.SettlementError
		assert.ErrorAs(t, g.Settle(context.Background(), transaction("-5.00")), &settlement)
	})

	t.Run("cancelled", func(t *testing.T) {
		g := NewSimulatedGateway(config.Processor{Delay: time.Hour})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		assert.ErrorIs(t, g.Settle(ctx, transaction("10.00")), context.DeadlineExceeded)
	})
}
