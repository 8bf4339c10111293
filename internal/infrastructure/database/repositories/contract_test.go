package repositories

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mufasadev/txwebhook/internal/domain/models"
	"github.com/mufasadev/txwebhook/internal/domain/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransaction(createdAt time.Time) *models.Transaction {
	return &models.Transaction{
		TransactionID:      uuid.New().String(),
		SourceAccount:      "acc_user_789",
		DestinationAccount: "acc_merchant_456",
		Amount:             decimal.RequireFromString("1500.00"),
		Currency:           "INR",
		Status:             models.StatusProcessing,
		CreatedAt:          createdAt.UTC().Truncate(time.Microsecond),
	}
}

// testTransactionRepository checks the guarantees every store must give.
// reset must leave the store empty.
func testTransactionRepository(t *testing.T, repo repositories.TransactionRepository, reset func()) {
	ctx := context.Background()

	t.Run("insert_and_get", func(t *testing.T) {
		reset()
		tx := newTransaction(time.Now())

		inserted, err := repo.InsertIfAbsent(ctx, tx)
		require.NoError(t, err)
		assert.True(t, inserted)

		got, err := repo.GetByTransactionID(ctx, tx.TransactionID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, tx.TransactionID, got.TransactionID)
		assert.Equal(t, tx.SourceAccount, got.SourceAccount)
		assert.Equal(t, tx.DestinationAccount, got.DestinationAccount)
		assert.True(t, tx.Amount.Equal(got.Amount), "amount %s != %s", tx.Amount, got.Amount)
		assert.Equal(t, "INR", got.Currency)
		assert.Equal(t, models.StatusProcessing, got.Status)
		assert.True(t, tx.CreatedAt.Equal(got.CreatedAt))
		assert.Nil(t, got.ProcessedAt)
	})

	t.Run("missing_returns_nil", func(t *testing.T) {
		reset()
		got, err := repo.GetByTransactionID(ctx, "unknown_id")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate_is_not_an_error", func(t *testing.T) {
		reset()
		tx := newTransaction(time.Now())

		inserted, err := repo.InsertIfAbsent(ctx, tx)
		require.NoError(t, err)
		require.True(t, inserted)

		dup := *tx
		dup.Amount = decimal.RequireFromString("1.00")
		inserted, err = repo.InsertIfAbsent(ctx, &dup)
		require.NoError(t, err)
		assert.False(t, inserted)

		got, err := repo.GetByTransactionID(ctx, tx.TransactionID)
		require.NoError(t, err)
		assert.True(t, got.Amount.Equal(tx.Amount), "duplicate must not overwrite the record")
	})

	t.Run("concurrent_duplicates", func(t *testing.T) {
		reset()
		tx := newTransaction(time.Now())

		n := 50
		var accepted int64
		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				c := *tx
				inserted, err := repo.InsertIfAbsent(ctx, &c)
				if err != nil {
					t.Error(err)
					return
				}
				if inserted {
					atomic.AddInt64(&accepted, 1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(1), accepted, "exactly one delivery must be admitted")
		counts, err := repo.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[models.StatusProcessing])
	})

	t.Run("complete_is_compare_and_set", func(t *testing.T) {
		reset()
		tx := newTransaction(time.Now())
		_, err := repo.InsertIfAbsent(ctx, tx)
		require.NoError(t, err)

		processedAt := time.Now().UTC().Truncate(time.Microsecond)
		ok, err := repo.CompleteTransaction(ctx, tx.TransactionID, models.StatusProcessed, processedAt)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.CompleteTransaction(ctx, tx.TransactionID, models.StatusFailed, processedAt.Add(time.Second))
		require.NoError(t, err)
		assert.False(t, ok, "a terminal record must not transition again")

		got, err := repo.GetByTransactionID(ctx, tx.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusProcessed, got.Status)
		require.NotNil(t, got.ProcessedAt)
		assert.True(t, processedAt.Equal(*got.ProcessedAt))
	})

	t.Run("complete_rejects_non_terminal", func(t *testing.T) {
		reset()
		tx := newTransaction(time.Now())
		_, err := repo.InsertIfAbsent(ctx, tx)
		require.NoError(t, err)

		_, err = repo.CompleteTransaction(ctx, tx.TransactionID, models.StatusProcessing, time.Now())
		assert.Error(t, err)
	})

	t.Run("complete_missing", func(t *testing.T) {
		reset()
		ok, err := repo.CompleteTransaction(ctx, "unknown_id", models.StatusProcessed, time.Now())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("concurrent_complete", func(t *testing.T) {
		reset()
		tx := newTransaction(time.Now())
		_, err := repo.InsertIfAbsent(ctx, tx)
		require.NoError(t, err)

		n := 20
		var transitioned int64
		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func(i int) {
				defer wg.Done()
				status := models.StatusProcessed
				if i%2 == 1 {
					status = models.StatusFailed
				}
				ok, err := repo.CompleteTransaction(ctx, tx.TransactionID, status, time.Now())
				if err != nil {
					t.Error(err)
					return
				}
				if ok {
					atomic.AddInt64(&transitioned, 1)
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int64(1), transitioned)
	})

	t.Run("concurrent_reads_see_whole_record", func(t *testing.T) {
		reset()
		tx := newTransaction(time.Now())
		_, err := repo.InsertIfAbsent(ctx, tx)
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(21)
		go func() {
			defer wg.Done()
			_, err := repo.CompleteTransaction(ctx, tx.TransactionID, models.StatusProcessed, time.Now())
			assert.NoError(t, err)
		}()
		for i := 0; i < 20; i++ {
			go func() {
				defer wg.Done()
				got, err := repo.GetByTransactionID(ctx, tx.TransactionID)
				if err != nil {
					t.Error(err)
					return
				}
				assert.Equal(t, got.Status.IsTerminal(), got.ProcessedAt != nil,
					"processed_at must be set iff status is terminal")
			}()
		}
		wg.Wait()
	})

	t.Run("list_and_count_by_status", func(t *testing.T) {
		reset()
		now := time.Now()
		old := newTransaction(now.Add(-time.Hour))
		older := newTransaction(now.Add(-2 * time.Hour))
		fresh := newTransaction(now)
		done := newTransaction(now.Add(-3 * time.Hour))
		for _, tx := range []*models.Transaction{old, older, fresh, done} {
			_, err := repo.InsertIfAbsent(ctx, tx)
			require.NoError(t, err)
		}
		_, err := repo.CompleteTransaction(ctx, done.TransactionID, models.StatusFailed, now)
		require.NoError(t, err)

		stale, err := repo.ListByStatus(ctx, models.StatusProcessing, now.Add(-30*time.Minute), 10)
		require.NoError(t, err)
		require.Len(t, stale, 2)
		assert.Equal(t, older.TransactionID, stale[0].TransactionID)
		assert.Equal(t, old.TransactionID, stale[1].TransactionID)

		all, err := repo.ListByStatus(ctx, models.StatusProcessing, time.Time{}, 2)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		counts, err := repo.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), counts[models.StatusProcessing])
		assert.Equal(t, int64(1), counts[models.StatusFailed])
		assert.Equal(t, int64(0), counts[models.StatusProcessed])
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, repo.Ping(ctx))
	})
}
