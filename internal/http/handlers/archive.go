package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"styleshot/pkg/zip"
)

type archiveRequest struct {
	Style  string `json:"style"`
	Images []struct {
		Slot         int    `json:"slot"`
		ImageDataURI string `json:"image_data_uri"`
	} `json:"images"`
}

// Archive bundles previously generated images into one zip download.
func (a *App) Archive(w http.ResponseWriter, r *http.Request) {
	var req archiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if len(req.Images) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "at least one image is required")
		return
	}
	style := strings.TrimSpace(req.Style)
	if style == "" {
		style = "styleshot"
	}

	ts := time.Now().UnixMilli()
	assets := make([]zip.Asset, 0, len(req.Images))
	for _, img := range req.Images {
		payload := img.ImageDataURI
		if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
			payload = payload[idx+1:]
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("slot %d is not valid base64", img.Slot))
			return
		}
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("styleshot-%s-%d-%d.jpg", strings.ToLower(style), ts, img.Slot+1),
			MIME:     "image/jpeg",
			Data:     data,
		})
	}

	archive := zip.ArchiveAssets(assets)
	if archive == nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=styleshot-%d.zip", ts))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
