package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/yndnr/tokmint-go/internal/core/domain"
)

const readyTimeout = 2 * time.Second

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: version(),
		Engine:  h.tokens.Engine(),
	})
}

// handleReady reports 503 while the revocation store is unreachable.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.tokens.Ping(ctx); err != nil {
		h.handleServiceError(w, r, domain.ErrServiceUnavailable.WithDetails("revocation store unreachable").WithCause(err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status: "ready",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
