package repositories

import (
	"context"
	"fmt"
	"github.com/mufasadev/txwebhook/internal/domain/models"
	"github.com/mufasadev/txwebhook/internal/domain/repositories"
	"sort"
	"sync"
	"time"
)

// MemoryTransactionRepository keeps transactions in process memory. It gives
// the same atomicity as the database stores within one process only, so it
// serves tests and single-instance local runs.
type MemoryTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*models.Transaction
}

func NewMemoryTransactionRepository() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{
		transactions: make(map[string]*models.Transaction),
	}
}

var _ repositories.TransactionRepository = (*MemoryTransactionRepository)(nil)

func (r *MemoryTransactionRepository) InsertIfAbsent(_ context.Context, transaction *models.Transaction) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transactions[transaction.TransactionID]; exists {
		return false, nil
	}
	r.transactions[transaction.TransactionID] = transaction.Clone()

	return true, nil
}

func (r *MemoryTransactionRepository) CompleteTransaction(_ context.Context, transactionID string, status models.Status, processedAt time.Time) (bool, error) {
	if !status.IsTerminal() {
		return false, fmt.Errorf("complete transaction: %q is not a terminal status", status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.transactions[transactionID]
	if !ok || tx.Status != models.StatusProcessing {
		return false, nil
	}

	// replace rather than mutate so earlier readers keep their snapshot
	next := tx.Clone()
	next.Status = status
	p := processedAt.UTC()
	next.ProcessedAt = &p
	r.transactions[transactionID] = next

	return true, nil
}

func (r *MemoryTransactionRepository) GetByTransactionID(_ context.Context, transactionID string) (*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tx, ok := r.transactions[transactionID]
	if !ok {
		return nil, nil
	}

	return tx.Clone(), nil
}

func (r *MemoryTransactionRepository) ListByStatus(_ context.Context, status models.Status, createdBefore time.Time, limit int) ([]*models.Transaction, error) {
	r.mu.RLock()
	result := make([]*models.Transaction, 0)
	for _, tx := range r.transactions {
		if tx.Status != status {
			continue
		}
		if !createdBefore.IsZero() && !tx.CreatedAt.Before(createdBefore) {
			continue
		}
		result = append(result, tx.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

func (r *MemoryTransactionRepository) CountByStatus(_ context.Context) (map[models.Status]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[models.Status]int64, len(models.ValidStatuses))
	for _, tx := range r.transactions {
		counts[tx.Status]++
	}

	return counts, nil
}

func (r *MemoryTransactionRepository) Ping(context.Context) error {
	return nil
}
