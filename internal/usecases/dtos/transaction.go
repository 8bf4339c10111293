package dtos

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/mufasadev/txwebhook/internal/domain/models"
	"time"
)

// WebhookDTO is the payload a payment processor posts for a transaction event.
type WebhookDTO struct {
	TransactionID      string          `json:"transaction_id"`
	SourceAccount      string          `json:"source_account"`
	DestinationAccount string          `json:"destination_account"`
	Amount             string          `json:"-"`
	RawAmount          json.RawMessage `json:"amount"`
	Currency           string          `json:"currency"`
}

// DecodeAmount fills Amount from RawAmount, which may be a JSON number or a
// JSON string holding a number.
func (d *WebhookDTO) DecodeAmount() error {
	raw := bytes.TrimSpace(d.RawAmount)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		d.Amount = ""
		return nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		d.Amount = s
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("amount must be a number or a numeric string: %w", err)
	}
	d.Amount = n.String()
	return nil
}

const (
	AckStatusAccepted  = "ACCEPTED"
	AckStatusDuplicate = "DUPLICATE"
)

// AckResponse acknowledges a webhook delivery.
type AckResponse struct {
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id"`
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
}

// TransactionResponse is the externally visible transaction record.
type TransactionResponse struct {
	TransactionID      string     `json:"transaction_id"`
	SourceAccount      string     `json:"source_account"`
	DestinationAccount string     `json:"destination_account"`
	Amount             string     `json:"amount"`
	Currency           string     `json:"currency"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	ProcessedAt        *time.Time `json:"processed_at"`
}

func NewTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:      t.TransactionID,
		SourceAccount:      t.SourceAccount,
		DestinationAccount: t.DestinationAccount,
		Amount:             t.Amount.StringFixed(2),
		Currency:           t.Currency,
		Status:             string(t.Status),
		CreatedAt:          t.CreatedAt,
		ProcessedAt:        t.ProcessedAt,
	}
}

type TransactionListResponse struct {
	Status       string                `json:"status"`
	Count        int                   `json:"count"`
	Transactions []TransactionResponse `json:"transactions"`
}

func NewTransactionListResponse(status models.Status, list []*models.Transaction) TransactionListResponse {
	resp := TransactionListResponse{
		Status:       string(status),
		Count:        len(list),
		Transactions: make([]TransactionResponse, 0, len(list)),
	}
	for _, t := range list {
		resp.Transactions = append(resp.Transactions, NewTransactionResponse(t))
	}
	return resp
}

// StatsResponse reports how many transactions sit in each lifecycle state.
type StatsResponse struct {
	Processing int64 `json:"processing"`
	Processed  int64 `json:"processed"`
	Failed     int64 `json:"failed"`
	Total      int64 `json:"total"`
}

func NewStatsResponse(counts map[models.Status]int64) StatsResponse {
	resp := StatsResponse{
		Processing: counts[models.StatusProcessing],
		Processed:  counts[models.StatusProcessed],
		Failed:     counts[models.StatusFailed],
	}
	resp.Total = resp.Processing + resp.Processed + resp.Failed
	return resp
}

type HealthResponse struct {
	Status      string    `json:"status"`
	CurrentTime time.Time `json:"current_time"`
	Error       string    `json:"error,omitempty"`
}
