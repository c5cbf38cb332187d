package handlers

import (
	"net/http"

	"styleshot/internal/middleware"
)

func (a *App) Styles(w http.ResponseWriter, r *http.Request) {
	subject := middleware.DeviceIDFromContext(r.Context())
	a.json(w, http.StatusOK, map[string]any{
		"styles": a.Studio.Styles(r.Context(), subject),
	})
}
