package interactor

import (
	"github.com/mufasadev/txwebhook/internal/domain/models"
	apperrors "github.com/mufasadev/txwebhook/internal/errors"
	"github.com/mufasadev/txwebhook/internal/usecases/dtos"
	"github.com/shopspring/decimal"
	"strings"
)

const (
	maxKeyLength = 255
	amountScale  = 2
)

// maxAmount is the first value that no longer fits NUMERIC(18,2).
var maxAmount = decimal.New(1, 16)

// ValidateWebhook checks a webhook payload and builds the transaction it
// describes. Every offending field is reported in the returned ValidationError.
func ValidateWebhook(dto *dtos.WebhookDTO, defaultCurrency string) (*models.Transaction, error) {
	verr := apperrors.NewValidationError()

	transactionID := strings.TrimSpace(dto.TransactionID)
	checkLength(verr, "transaction_id", transactionID)

	source := strings.TrimSpace(dto.SourceAccount)
	destination := strings.TrimSpace(dto.DestinationAccount)
	checkLength(verr, "source_account", source)
	checkLength(verr, "destination_account", destination)
	if source != "" && source == destination {
		verr.Add("destination_account", "must differ from source_account")
	}

	var amount decimal.Decimal
	if err := dto.DecodeAmount(); err != nil {
		verr.Add("amount", "must be a number")
	} else if dto.Amount == "" {
		verr.Add("amount", "is required")
	} else if amount, err = decimal.NewFromString(dto.Amount); err != nil {
		verr.Add("amount", "must be a number")
	} else if !amount.IsPositive() {
		verr.Add("amount", "must be greater than zero")
	} else if !amount.Equal(amount.Truncate(amountScale)) {
		verr.Add("amount", "must have at most 2 decimal places")
	} else if amount.GreaterThanOrEqual(maxAmount) {
		verr.Add("amount", "is too large")
	}

	currency := strings.ToUpper(strings.TrimSpace(dto.Currency))
	if currency == "" {
		currency = strings.ToUpper(defaultCurrency)
	}
	if !isCurrencyCode(currency) {
		verr.Add("currency", "must be a 3-letter ISO 4217 code")
	}

	if verr.HasErrors() {
		return nil, verr
	}

	return &models.Transaction{
		TransactionID:      transactionID,
		SourceAccount:      source,
		DestinationAccount: destination,
		Amount:             amount.Round(amountScale),
		Currency:           currency,
	}, nil
}

func checkLength(verr *apperrors.ValidationError, field, value string) {
	switch {
	case value == "":
		verr.Add(field, "is required")
	case len(value) > maxKeyLength:
		verr.Add(field, "is too long")
	}
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
