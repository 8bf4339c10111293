package interactor

import (
	"context"
	"testing"
	"time"

	"github.com/mufasadev/txwebhook/internal/domain/models"
	dbrepo "github.com/mufasadev/txwebhook/internal/infrastructure/database/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaleTransactionInteractorExecute(t *testing.T) {
	ctx := context.Background()
	repo := dbrepo.NewMemoryTransactionRepository()
	now := time.Now().UTC()

	for id, created := range map[string]time.Time{
		"txn_stale_old":   now.Add(-time.Hour),
		"txn_stale_fresh": now.Add(-time.Minute),
		"txn_stale_done":  now.Add(-2 * time.Hour),
	} {
		_, err := repo.InsertIfAbsent(ctx, processingTransaction(id, created))
		require.NoError(t, err)
	}
	_, err := repo.CompleteTransaction(ctx, "txn_stale_done", models.StatusProcessed, now)
	require.NoError(t, err)

	s := NewStaleTransactionInteractor(repo, 10*time.Minute, 100)
	stale, err := s.Execute(ctx)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "txn_stale_old", stale[0].TransactionID)

	// reporting never transitions a record
	stored, err := repo.GetByTransactionID(ctx, "txn_stale_old")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, stored.Status)
}
