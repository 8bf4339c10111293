package handlers

import (
	"context"
	"github.com/mufasadev/txwebhook/internal/errors"
	http2 "github.com/mufasadev/txwebhook/internal/infrastructure/api/http"
	"github.com/mufasadev/txwebhook/internal/usecases/dtos"
	"github.com/mufasadev/txwebhook/internal/usecases/interactor"
	"github.com/mufasadev/txwebhook/pkg/log"
	"github.com/rs/zerolog"
	"net/http"
	"strconv"
	"time"
)

const queryTimeout = 5 * time.Second

type TransactionHandler struct {
	interactor *interactor.StatusInteractor
	logger     *zerolog.Logger
}

func NewTransactionHandler(interactor *interactor.StatusInteractor) *TransactionHandler {
	logger := log.GetLogger()
	return &TransactionHandler{interactor: interactor, logger: &logger}
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	transaction, err := h.interactor.Query(ctx, http2.TransactionID(r))
	if err != nil {
		errors.HandleHTTPError(w, err)
		return
	}

	h.write(w, dtos.NewTransactionResponse(transaction))
}

func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := 0
	if raw := query.Get(http2.LimitQuery); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			verr := errors.NewValidationError()
			verr.Add(http2.LimitQuery, "must be an integer")
			errors.HandleHTTPError(w, verr)
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	status, list, err := h.interactor.List(ctx, query.Get(http2.StatusQuery), limit)
	if err != nil {
		errors.HandleHTTPError(w, err)
		return
	}

	h.write(w, dtos.NewTransactionListResponse(status, list))
}

func (h *TransactionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	counts, err := h.interactor.Stats(ctx)
	if err != nil {
		errors.HandleHTTPError(w, err)
		return
	}

	h.write(w, dtos.NewStatsResponse(counts))
}

func (h *TransactionHandler) write(w http.ResponseWriter, v interface{}) {
	if err := http2.WriteJSON(w, http.StatusOK, v); err != nil {
		h.logger.Error().Err(err).Msg("Failed to write response")
	}
}
