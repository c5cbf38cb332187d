package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const deviceIDKey contextKey = "device_id"

// DeviceIDHeader identifies the installation making the request. There is no
// account system; one device is one subject.
const DeviceIDHeader = "X-Device-ID"

// DeviceID rejects requests without an installation id and stores the id in
// the request context for handlers.
func DeviceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(DeviceIDHeader))
		if id == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "bad_request",
				"message": "missing " + DeviceIDHeader + " header",
			})
			return
		}
		ctx := context.WithValue(r.Context(), deviceIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DeviceIDFromContext returns the installation id stored by DeviceID, or "".
func DeviceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(deviceIDKey).(string); ok {
		return v
	}
	return ""
}
