package http

import (
	"encoding/json"
	"github.com/go-chi/chi/v5"
	"net/http"
	"strings"
)

const (
	TransactionIDParam = "transaction_id"
	StatusQuery        = "status"
	LimitQuery         = "limit"

	// MaxBodyBytes caps a webhook payload.
	MaxBodyBytes = 1 << 20
)

// TransactionID returns the trimmed transaction id path parameter.
func TransactionID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, TransactionIDParam))
}

// WriteJSON writes v as the JSON response body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
