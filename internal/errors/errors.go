package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	ErrorFailedToConnectToTheDatabase = "Failed to connect to the database"
	ErrorFailedToMigrateTheDatabase   = "Failed to migrate the database"
	ErrorFailedToRunTheServer         = "Failed to run the server"
	ErrorFailedToShutdownTheServer    = "Failed to shutdown the server"
	ErrFailedDecodeRequestBody        = "Failed to decode request body"
	ErrInvalidRequestBody             = "Invalid request body"
	ErrFailedReceiveWebhook           = "Failed to receive webhook"
	ErrFailedQueryTransaction         = "Failed to query transaction"
	ErrFailedListTransactions         = "Failed to list transactions"
	ErrFailedCheckStaleTransactions   = "Failed to check stale transactions"
	ErrTransactionIDRequired          = "Transaction ID is required"
	ErrInvalidTransactionID           = "Invalid Transaction ID"
	ErrContentTypeJSON                = "Content-Type must be application/json"
	ErrValidationFailed               = "Validation failed"
	ErrStoreUnavailable               = "Transaction store unavailable"
)

type BadRequestError struct {
	Message string
}

func NewBadRequestError(message string) *BadRequestError {
	return &BadRequestError{Message: message}
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("Bad request: %s", e.Message)
}

// ValidationError carries per-field reasons for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records the first reason reported for field.
func (e *ValidationError) Add(field, reason string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = reason
	}
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// StoreUnavailableError wraps an infrastructure failure of the transaction store.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func NewStoreUnavailableError(op string, err error) *StoreUnavailableError {
	return &StoreUnavailableError{Op: op, Err: err}
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable (%s): %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

type UnsupportedMediaTypeError struct{}

func NewUnsupportedMediaTypeError() *UnsupportedMediaTypeError {
	return &UnsupportedMediaTypeError{}
}

func (e *UnsupportedMediaTypeError) Error() string {
	return ErrContentTypeJSON
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsStoreUnavailable reports whether err originates from the transaction store.
func IsStoreUnavailable(err error) bool {
	var e *StoreUnavailableError
	return errors.As(err, &e)
}

// SettlementError reports that the payment network rejected a transaction.
// It is a legitimate outcome that ends in FAILED, not a system fault.
type SettlementError struct {
	Reason string
}

func NewSettlementError(reason string) *SettlementError {
	return &SettlementError{Reason: reason}
}

func (e *SettlementError) Error() string {
	return fmt.Sprintf("settlement failed: %s", e.Reason)
}
