package handlers

import (
	"context"
	http2 "github.com/mufasadev/txwebhook/internal/infrastructure/api/http"
	"github.com/mufasadev/txwebhook/internal/usecases/dtos"
	"github.com/mufasadev/txwebhook/internal/usecases/interactor"
	"github.com/mufasadev/txwebhook/pkg/log"
	"github.com/rs/zerolog"
	"net/http"
	"time"
)

const (
	healthStatusHealthy  = "HEALTHY"
	healthStatusDegraded = "DEGRADED"
	healthProbeTimeout   = 2 * time.Second
)

type HealthHandler struct {
	interactor *interactor.StatusInteractor
	logger     *zerolog.Logger
}

func NewHealthHandler(interactor *interactor.StatusInteractor) *HealthHandler {
	logger := log.GetLogger()
	return &HealthHandler{interactor: interactor, logger: &logger}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	resp := dtos.HealthResponse{Status: healthStatusHealthy, CurrentTime: time.Now().UTC()}
	status := http.StatusOK
	if err := h.interactor.Probe(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("Health probe failed")
		resp.Status = healthStatusDegraded
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	}

	if err := http2.WriteJSON(w, status, resp); err != nil {
		h.logger.Error().Err(err).Msg("Failed to write response")
	}
}
