// Package handlers carries the HTTP surface over the studio service.
package handlers

import (
	"encoding/json"
	"net/http"

	"styleshot/internal/infra"
	"styleshot/internal/prefs"
	"styleshot/internal/studio"
)

type App struct {
	Studio  *studio.Service
	Prefs   *prefs.Prefs
	Metrics *Metrics
	Logger  infra.Logger
}

func NewApp(svc *studio.Service, p *prefs.Prefs, logger infra.Logger) *App {
	return &App{
		Studio:  svc,
		Prefs:   p,
		Metrics: NewMetrics(),
		Logger:  logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	a.json(w, status, map[string]string{"error": code, "message": msg})
}
