package handlers

import (
	"errors"
	"net/http"

	"github.com/pribylovaa/authgate/internal/auth"
	apierrors "github.com/pribylovaa/authgate/internal/errors"
	"github.com/pribylovaa/authgate/internal/models"
)

// Me отдаёт профиль текущего пользователя. Требует RequireAuth перед собой.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, apierrors.Internal("internal error",
			errors.New("handlers.Me: identity missing, route is not behind RequireAuth")))
		return
	}

	u, err := h.svc.Profile(r.Context(), id.UserID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, models.UserToResponse(*u))
}
