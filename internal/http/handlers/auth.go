package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/authgate/internal/errors"
	"github.com/pribylovaa/authgate/internal/models"
)

const msgInvalidBody = "invalid request body"

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.BadRequest(msgInvalidBody).Wrap(err))
		return
	}

	res, err := h.svc.Register(r.Context(), in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteJSON(w, http.StatusCreated, models.AuthToResponse(res))
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.BadRequest(msgInvalidBody).Wrap(err))
		return
	}

	res, err := h.svc.Login(r.Context(), in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, models.AuthToResponse(res))
}
