package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/authgate/internal/errors"
	"github.com/pribylovaa/authgate/internal/models"
)

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	apierrors.WriteJSON(w, http.StatusOK, models.HealthResponse{Status: "healthy", Version: h.version})
}

// Ready отвечает 200 только при доступном хранилище; иначе 500/DATABASE_ERROR.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ready(r.Context()); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, models.ReadinessResponse{Status: "ready", Database: "connected"})
}
