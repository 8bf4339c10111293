package interactor

import (
	"context"
	"sync"
	"time"

	"github.com/mufasadev/txwebhook/internal/domain/models"
	apperrors "github.com/mufasadev/txwebhook/internal/errors"
	dbrepo "github.com/mufasadev/txwebhook/internal/infrastructure/database/repositories"
	"github.com/mufasadev/txwebhook/internal/usecases/dtos"
	"github.com/shopspring/decimal"
)

func validDTO(id string) *dtos.WebhookDTO {
	return &dtos.WebhookDTO{
		TransactionID:      id,
		SourceAccount:      "acc_user_789",
		DestinationAccount: "acc_merchant_456",
		RawAmount:          []byte(`1500`),
		Currency:           "INR",
	}
}

func processingTransaction(id string, createdAt time.Time) *models.Transaction {
	return &models.Transaction{
		TransactionID:      id,
		SourceAccount:      "acc_user_789",
		DestinationAccount: "acc_merchant_456",
		Amount:             decimal.RequireFromString("1500.00"),
		Currency:           "INR",
		Status:             models.StatusProcessing,
		CreatedAt:          createdAt,
	}
}

type recordingDispatcher struct {
	mu  sync.Mutex
	ids []string
}

func (d *recordingDispatcher) Dispatch(transactionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, transactionID)
}

func (d *recordingDispatcher) dispatched() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.ids...)
}

type gatewayFunc func(ctx context.Context, transaction *models.Transaction) error

func (f gatewayFunc) Settle(ctx context.Context, transaction *models.Transaction) error {
	return f(ctx, transaction)
}

// flakyRepository fails the first completeFailures completions with a store
// error. Inserts can fail, block until ctx is done, or commit and then block.
type flakyRepository struct {
	*dbrepo.MemoryTransactionRepository
	mu               sync.Mutex
	completeFailures int
	completeCalls    int
	insertErr        error
	blockInsert      bool
	commitThenBlock  bool
}

func newFlakyRepository() *flakyRepository {
	return &flakyRepository{MemoryTransactionRepository: dbrepo.NewMemoryTransactionRepository()}
}

func (r *flakyRepository) InsertIfAbsent(ctx context.Context, transaction *models.Transaction) (bool, error) {
	if r.blockInsert {
		<-ctx.Done()
		return false, apperrors.NewStoreUnavailableError("insert transaction", ctx.Err())
	}
	if r.insertErr != nil {
		return false, r.insertErr
	}
	if r.commitThenBlock {
		if _, err := r.MemoryTransactionRepository.InsertIfAbsent(ctx, transaction); err != nil {
			return false, err
		}
		<-ctx.Done()
		return false, apperrors.NewStoreUnavailableError("insert transaction", ctx.Err())
	}
	return r.MemoryTransactionRepository.InsertIfAbsent(ctx, transaction)
}

func (r *flakyRepository) CompleteTransaction(ctx context.Context, transactionID string, status models.Status, processedAt time.Time) (bool, error) {
	r.mu.Lock()
	r.completeCalls++
	fail := r.completeCalls <= r.completeFailures
	r.mu.Unlock()

	if fail {
		return false, apperrors.NewStoreUnavailableError("complete transaction", context.DeadlineExceeded)
	}
	return r.MemoryTransactionRepository.CompleteTransaction(ctx, transactionID, status, processedAt)
}

func (r *flakyRepository) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completeCalls
}
