package dtos

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mufasadev/txwebhook/internal/domain/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookDTODecodeAmount(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "number", body: `{"amount": 1500}`, want: "1500"},
		{name: "fraction", body: `{"amount": 1500.50}`, want: "1500.50"},
		{name: "string", body: `{"amount": "99.99"}`, want: "99.99"},
		{name: "missing", body: `{}`, want: ""},
		{name: "null", body: `{"amount": null}`, want: ""},
		{name: "bool", body: `{"amount": true}`, wantErr: true},
		{name: "object", body: `{"amount": {"value": 1}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dto WebhookDTO
			require.NoError(t, json.Unmarshal([]byte(tt.body), &dto))

			err := dto.DecodeAmount()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, dto.Amount)
		})
	}
}

func TestNewTransactionResponse(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	tx := &models.Transaction{
		TransactionID:      "txn_abc123def456",
		SourceAccount:      "acc_user_789",
		DestinationAccount: "acc_merchant_456",
		Amount:             decimal.RequireFromString("1500"),
		Currency:           "INR",
		Status:             models.StatusProcessing,
		CreatedAt:          created,
	}

	body, err := json.Marshal(NewTransactionResponse(tx))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "1500.00", decoded["amount"])
	assert.Equal(t, "PROCESSING", decoded["status"])
	assert.Contains(t, decoded, "processed_at")
	assert.Nil(t, decoded["processed_at"])
}

func TestNewStatsResponse(t *testing.T) {
	resp := NewStatsResponse(map[models.Status]int64{
		models.StatusProcessing: 2,
		models.StatusProcessed:  5,
	})

	assert.Equal(t, int64(2), resp.Processing)
	assert.Equal(t, int64(5), resp.Processed)
	assert.Equal(t, int64(0), resp.Failed)
	assert.Equal(t, int64(7), resp.Total)
}
