package handlers

import (
	"encoding/json"
	"github.com/mufasadev/txwebhook/internal/errors"
	http2 "github.com/mufasadev/txwebhook/internal/infrastructure/api/http"
	"github.com/mufasadev/txwebhook/internal/usecases/dtos"
	"github.com/mufasadev/txwebhook/internal/usecases/interactor"
	"github.com/mufasadev/txwebhook/pkg/log"
	"github.com/rs/zerolog"
	"net/http"
)

type WebhookHandler struct {
	interactor *interactor.WebhookInteractor
	logger     *zerolog.Logger
}

func NewWebhookHandler(interactor *interactor.WebhookInteractor) *WebhookHandler {
	logger := log.GetLogger()
	return &WebhookHandler{interactor: interactor, logger: &logger}
}

// ReceiveTransaction acknowledges a transaction webhook. A first delivery is
// answered with 202, a redelivery of a known transaction with 200.
func (h *WebhookHandler) ReceiveTransaction(w http.ResponseWriter, r *http.Request) {
	var dto dtos.WebhookDTO
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, http2.MaxBodyBytes))
	if err := decoder.Decode(&dto); err != nil {
		h.logger.Warn().Err(err).Msg(errors.ErrFailedDecodeRequestBody)
		errors.HandleHTTPError(w, errors.NewBadRequestError(errors.ErrInvalidRequestBody))
		return
	}

	ack, admission, err := h.interactor.Receive(r.Context(), &dto)
	if err != nil {
		h.logger.Debug().Err(err).Msg(errors.ErrFailedReceiveWebhook)
		errors.HandleHTTPError(w, err)
		return
	}

	status := http.StatusAccepted
	if admission == interactor.AdmissionDuplicate {
		status = http.StatusOK
	}
	if err = http2.WriteJSON(w, status, ack); err != nil {
		h.logger.Error().Err(err).Msg("Failed to write acknowledgement")
	}
}
