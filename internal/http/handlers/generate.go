package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"styleshot/internal/domain"
	"styleshot/internal/middleware"
	"styleshot/internal/studio"
)

type generateRequest struct {
	Prompt      string `json:"prompt"`
	ImageBase64 string `json:"image_base64"`
	StyleID     int    `json:"style_id"`
	Slots       int    `json:"slots"`
}

type generateResponse struct {
	Style    string                    `json:"style"`
	Results  []domain.GenerationResult `json:"results"`
	Ready    int                       `json:"ready"`
	Quota    domain.QuotaState         `json:"quota"`
	LastFree bool                      `json:"last_free,omitempty"`
}

// Generate runs a full batch synchronously. Partial success is still a 200;
// the per-slot results carry the failures.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	subject := middleware.DeviceIDFromContext(r.Context())
	locale := middleware.LocaleFromContext(r.Context())
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	out, err := a.Studio.Generate(r.Context(), studio.GenerateParams{
		Subject:     subject,
		Prompt:      req.Prompt,
		ImageBase64: req.ImageBase64,
		StyleID:     req.StyleID,
		Slots:       req.Slots,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			a.error(w, http.StatusBadRequest, "bad_request", "exactly one of prompt or image_base64 is required")
		case errors.Is(err, domain.ErrStyleNotFound):
			a.error(w, http.StatusNotFound, "not_found", "unknown style_id")
		case errors.Is(err, domain.ErrStyleLocked):
			a.Metrics.RecordBlocked()
			a.error(w, http.StatusPaymentRequired, "style_locked", userMessage(locale, "style_locked"))
		case errors.Is(err, domain.ErrQuotaBlocked):
			a.Metrics.RecordBlocked()
			a.error(w, http.StatusPaymentRequired, "quota_exceeded", userMessage(locale, "quota_exceeded"))
		default:
			a.Logger.Error().Err(err).Str("subject", subject).Msg("handlers: generation failed")
			a.error(w, http.StatusInternalServerError, "internal", "generation failed")
		}
		return
	}

	failed := 0
	for _, res := range out.Results {
		if res.Status == domain.SlotFailed {
			failed++
		}
	}
	a.Metrics.RecordBatch(out.Ready, failed)
	a.Logger.Info().
		Str("subject", subject).
		Str("locale", locale).
		Str("country", middleware.CountryFromContext(r.Context())).
		Int("ready", out.Ready).
		Int("failed", failed).
		Msg("handlers: batch served")
	a.json(w, http.StatusOK, generateResponse{
		Style:    out.Style.InternalName,
		Results:  out.Results,
		Ready:    out.Ready,
		Quota:    out.Quota,
		LastFree: out.LastFree,
	})
}
