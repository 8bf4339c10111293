package interactor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mufasadev/txwebhook/internal/domain/models"
	apperrors "github.com/mufasadev/txwebhook/internal/errors"
	dbrepo "github.com/mufasadev/txwebhook/internal/infrastructure/database/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusInteractorQuery(t *testing.T) {
	ctx := context.Background()
	repo := dbrepo.NewMemoryTransactionRepository()
	seed(t, repo, "txn_abc123def456")
	s := NewStatusInteractor(repo)

	tx, err := s.Query(ctx, "txn_abc123def456")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, tx.Status)

	_, err = s.Query(ctx, "txn_unknown")
	var nf *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestStatusInteractorList(t *testing.T) {
	ctx := context.Background()
	repo := dbrepo.NewMemoryTransactionRepository()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		_, err := repo.InsertIfAbsent(ctx, processingTransaction(fmt.Sprintf("txn_list_%d", i), base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}
	_, err := repo.CompleteTransaction(ctx, "txn_list_0", models.StatusProcessed, time.Now().UTC())
	require.NoError(t, err)
	s := NewStatusInteractor(repo)

	status, list, err := s.List(ctx, "processing", 0)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, status)
	require.Len(t, list, 2)
	assert.Equal(t, "txn_list_1", list[0].TransactionID)

	_, list, err = s.List(ctx, "PROCESSING", 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	var verr *apperrors.ValidationError
	_, _, err = s.List(ctx, "DONE", 0)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "status")

	_, _, err = s.List(ctx, "FAILED", MaxListLimit+1)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "limit")
}

func TestStatusInteractorStats(t *testing.T) {
	ctx := context.Background()
	repo := dbrepo.NewMemoryTransactionRepository()
	seed(t, repo, "txn_stats_1")
	seed(t, repo, "txn_stats_2")
	_, err := repo.CompleteTransaction(ctx, "txn_stats_2", models.StatusFailed, time.Now().UTC())
	require.NoError(t, err)

	counts, err := NewStatusInteractor(repo).Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.StatusProcessing])
	assert.Equal(t, int64(1), counts[models.StatusFailed])
	assert.NoError(t, NewStatusInteractor(repo).Probe(ctx))
}
