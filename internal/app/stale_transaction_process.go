package app

import (
	"context"
	"github.com/mufasadev/txwebhook/internal/config"
	"github.com/mufasadev/txwebhook/internal/domain/models"
	"github.com/mufasadev/txwebhook/internal/errors"
	"github.com/mufasadev/txwebhook/pkg/log"
	"github.com/rs/zerolog"
	"time"
)

type StaleTransactionHandler interface {
	Execute(ctx context.Context) ([]*models.Transaction, error)
}

// StaleTransactionProcess periodically reports transactions stuck in PROCESSING.
type StaleTransactionProcess struct {
	handler StaleTransactionHandler
	config  config.Process
	logger  *zerolog.Logger
}

func NewStaleTransactionProcess(h StaleTransactionHandler, cfg config.Process) *StaleTransactionProcess {
	l := log.GetLogger()
	return &StaleTransactionProcess{handler: h, config: cfg, logger: &l}
}

// Run runs the stale transaction check until ctx is done.
func (p *StaleTransactionProcess) Run(ctx context.Context) {
	if p.config.Interval <= 0 {
		p.logger.Info().Msg("Stale transaction check disabled")
		return
	}

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.handler.Execute(ctx); err != nil {
				p.logger.Error().Err(err).Msg(errors.ErrFailedCheckStaleTransactions)
			}
		}
	}
}
