package handlers

import (
	"net/http"

	"styleshot/internal/middleware"
)

func (a *App) OnboardingStatus(w http.ResponseWriter, r *http.Request) {
	subject := middleware.DeviceIDFromContext(r.Context())
	done, err := a.Prefs.Onboarded(r.Context(), subject)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: onboarding read failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load onboarding state")
		return
	}
	a.json(w, http.StatusOK, map[string]bool{"completed": done})
}

func (a *App) OnboardingComplete(w http.ResponseWriter, r *http.Request) {
	subject := middleware.DeviceIDFromContext(r.Context())
	if err := a.Prefs.CompleteOnboarding(r.Context(), subject); err != nil {
		a.Logger.Error().Err(err).Msg("handlers: onboarding write failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to persist onboarding state")
		return
	}
	a.json(w, http.StatusOK, map[string]bool{"completed": true})
}
