package models

import (
	"github.com/shopspring/decimal"
	"time"
)

// Status is the lifecycle state of a transaction.
type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusProcessed  Status = "PROCESSED"
	StatusFailed     Status = "FAILED"
)

// ValidStatuses holds every known lifecycle state.
var ValidStatuses = map[Status]struct{}{
	StatusProcessing: {},
	StatusProcessed:  {},
	StatusFailed:     {},
}

// IsTerminal reports whether no further transition may leave s.
func (s Status) IsTerminal() bool {
	return s == StatusProcessed || s == StatusFailed
}

func (s Status) IsValid() bool {
	_, ok := ValidStatuses[s]
	return ok
}

type Transaction struct {
	TransactionID      string          `db:"transaction_id"`
	SourceAccount      string          `db:"source_account"`
	DestinationAccount string          `db:"destination_account"`
	Amount             decimal.Decimal `db:"amount"`
	Currency           string          `db:"currency"`
	Status             Status          `db:"status"`
	CreatedAt          time.Time       `db:"created_at"`
	ProcessedAt        *time.Time      `db:"processed_at"`
}

// Clone returns a deep copy so callers never share the ProcessedAt pointer.
func (t *Transaction) Clone() *Transaction {
	c := *t
	if t.ProcessedAt != nil {
		p := *t.ProcessedAt
		c.ProcessedAt = &p
	}
	return &c
}
