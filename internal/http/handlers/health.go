package handlers

import (
	"net/http"
)

// Health reports liveness. Generation backend reachability is not checked
// here; batches surface backend failures per slot instead.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "styleshot",
	})
}
