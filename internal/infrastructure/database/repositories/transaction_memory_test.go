package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/mufasadev/txwebhook/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTransactionRepository(t *testing.T) {
	repo := NewMemoryTransactionRepository()
	reset := func() {
		repo.mu.Lock()
		repo.transactions = make(map[string]*models.Transaction)
		repo.mu.Unlock()
	}

	testTransactionRepository(t, repo, reset)
}

func TestMemoryTransactionRepositoryReturnsSnapshots(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTransactionRepository()
	tx := newTransaction(time.Now())
	_, err := repo.InsertIfAbsent(ctx, tx)
	require.NoError(t, err)

	before, err := repo.GetByTransactionID(ctx, tx.TransactionID)
	require.NoError(t, err)

	_, err = repo.CompleteTransaction(ctx, tx.TransactionID, models.StatusProcessed, time.Now())
	require.NoError(t, err)

	assert.Equal(t, models.StatusProcessing, before.Status, "earlier reads must not change under the reader")
	assert.Nil(t, before.ProcessedAt)

	tx.SourceAccount = "mutated"
	after, err := repo.GetByTransactionID(ctx, tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, "acc_user_789", after.SourceAccount)
}
