package handlers

import (
	"net/http"

	"styleshot/internal/middleware"
)

func (a *App) Quota(w http.ResponseWriter, r *http.Request) {
	subject := middleware.DeviceIDFromContext(r.Context())
	view, err := a.Studio.Quota(r.Context(), subject)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: quota read failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load quota")
		return
	}
	a.json(w, http.StatusOK, view)
}
