package api

import (
	"encoding/json"
	"net/http"

	"imagegen/models"
)

// Download handles POST /download: fetch the named history entries into the
// server's download directory, one at a time.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs      []string `json:"ids"`
		Filename string   `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids is required")
		return
	}

	images := make([]models.GeneratedImage, 0, len(req.IDs))
	for _, id := range req.IDs {
		img, ok := h.store.Get(r.Context(), id)
		if !ok {
			writeError(w, http.StatusNotFound, "image not found in history: "+id)
			return
		}
		images = append(images, img)
	}

	var err error
	if len(images) == 1 {
		err = h.downloads.Download(r.Context(), images[0], req.Filename)
	} else {
		err = h.downloads.DownloadAll(r.Context(), images)
	}

	state := h.downloads.State()
	if err != nil {
		// Partial multi-download failures still report what succeeded.
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
			"state":   state,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"state":   state,
	})
}

// DownloadStatus handles GET /download.
func (h *Handler) DownloadStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.downloads.State())
}
