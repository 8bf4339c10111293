package di

import (
	"context"
	"github.com/mufasadev/txwebhook/internal/config"
	"github.com/mufasadev/txwebhook/internal/domain/repositories"
	"github.com/mufasadev/txwebhook/internal/infrastructure/api/handlers"
	"github.com/mufasadev/txwebhook/internal/infrastructure/gateway"
	"github.com/mufasadev/txwebhook/internal/infrastructure/worker"
	"github.com/mufasadev/txwebhook/internal/usecases/interactor"
)

type Container struct {
	WebhookHandler             *handlers.WebhookHandler
	TransactionHandler         *handlers.TransactionHandler
	HealthHandler              *handlers.HealthHandler
	StaleTransactionInteractor *interactor.StaleTransactionInteractor
	Dispatcher                 *worker.Dispatcher
}

// NewContainer creates a new Container instance. Background processing runs
// under ctx; stop it with Dispatcher.Shutdown.
func NewContainer(ctx context.Context, cfg *config.Config, transactionRepository repositories.TransactionRepository) *Container {
	processor := interactor.NewTransactionProcessor(
		transactionRepository,
		gateway.NewSimulatedGateway(cfg.Processor),
		cfg.UpdateAttempts,
		cfg.UpdateBackoff,
	)
	dispatcher := worker.NewDispatcher(ctx, processor, cfg.Workers, cfg.QueueSize)

	guard := interactor.NewIdempotencyGuard(transactionRepository)
	webhookInteractor := interactor.NewWebhookInteractor(guard, dispatcher, cfg.AckDeadline, cfg.DefaultCurrency)
	webhookHandler := handlers.NewWebhookHandler(webhookInteractor)

	statusInteractor := interactor.NewStatusInteractor(transactionRepository)
	transactionHandler := handlers.NewTransactionHandler(statusInteractor)
	healthHandler := handlers.NewHealthHandler(statusInteractor)

	staleTransactionInteractor := interactor.NewStaleTransactionInteractor(transactionRepository, cfg.StaleAfter, cfg.Process.Limit)

	return &Container{
		WebhookHandler:             webhookHandler,
		TransactionHandler:         transactionHandler,
		HealthHandler:              healthHandler,
		StaleTransactionInteractor: staleTransactionInteractor,
		Dispatcher:                 dispatcher,
	}
}
