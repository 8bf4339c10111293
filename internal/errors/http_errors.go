package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

type HTTPError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// HandleHTTPError handles http errors
func HandleHTTPError(w http.ResponseWriter, err error) {
	var (
		httpErr     *HTTPError
		validation  *ValidationError
		notFound    *NotFoundError
		badRequest  *BadRequestError
		unsupported *UnsupportedMediaTypeError
	)
	switch {
	case errors.As(err, &validation):
		httpErr = &HTTPError{
			Code:    http.StatusUnprocessableEntity,
			Message: ErrValidationFailed,
			Fields:  validation.Fields,
		}
	case errors.As(err, &badRequest):
		httpErr = &HTTPError{
			Code:    http.StatusBadRequest,
			Message: badRequest.Error(),
		}
	case errors.As(err, &notFound):
		httpErr = &HTTPError{
			Code:    http.StatusNotFound,
			Message: notFound.Error(),
		}
	case errors.As(err, &unsupported):
		httpErr = &HTTPError{
			Code:    http.StatusUnsupportedMediaType,
			Message: unsupported.Error(),
		}
	case IsStoreUnavailable(err), errors.Is(err, context.DeadlineExceeded):
		httpErr = &HTTPError{
			Code:    http.StatusServiceUnavailable,
			Message: ErrStoreUnavailable,
		}
	default:
		httpErr = &HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.Code)
	json.NewEncoder(w).Encode(httpErr)
}
