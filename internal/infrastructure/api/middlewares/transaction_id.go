package middlewares

import (
	"github.com/mufasadev/txwebhook/internal/errors"
	http2 "github.com/mufasadev/txwebhook/internal/infrastructure/api/http"
	"github.com/mufasadev/txwebhook/pkg/log"
	"net/http"
)

const maxTransactionIDLength = 255

// TransactionIDValidationMiddleware rejects requests whose transaction id path
// parameter is empty or longer than any stored key.
func TransactionIDValidationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.GetLogger()
		transactionID := http2.TransactionID(r)
		if transactionID == "" {
			logger.Debug().Msg(errors.ErrTransactionIDRequired)
			errors.HandleHTTPError(w, errors.NewBadRequestError(errors.ErrTransactionIDRequired))
			return
		}
		if len(transactionID) > maxTransactionIDLength {
			logger.Debug().Str("transaction_id", transactionID[:32]).Msg(errors.ErrInvalidTransactionID)
			errors.HandleHTTPError(w, errors.NewBadRequestError(errors.ErrInvalidTransactionID))
			return
		}

		next.ServeHTTP(w, r)
	})
}
