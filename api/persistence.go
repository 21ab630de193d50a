package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"imagegen/catalog"
	"imagegen/download"
	"imagegen/models"
)

// ListHistory handles GET /history. The default view shows the most recent
// entries; ?limit=0 returns the full stored list.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := catalog.HistoryViewLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	images := h.store.List(r.Context(), limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"images":  images,
		"count":   len(images),
	})
}

// RemoveHistoryItem handles DELETE /history/{id}.
func (h *Handler) RemoveHistoryItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	removed, err := h.store.Remove(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "image not found in history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ShareHistoryItem handles GET /history/{id}/share: a link that reopens the
// UI with the entry's parameters prefilled.
func (h *Handler) ShareHistoryItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	img, ok := h.store.Get(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "image not found in history")
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"shareUrl": download.ShareURL(scheme+"://"+r.Host, img),
	})
}

// ClearHistory handles DELETE /history.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GetSettings handles GET /settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.LoadSettings(r.Context()))
}

// PutSettings handles PUT /settings. The record is replaced wholesale;
// unknown keys and out-of-catalog values are rejected.
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	var settings models.UserSettings
	if err := decoder.Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid settings: "+err.Error())
		return
	}

	if _, ok := catalog.SizeByValue(settings.DefaultSize); !ok {
		writeError(w, http.StatusBadRequest, "defaultSize must be a supported size")
		return
	}
	if settings.DefaultStyle != "" {
		if _, ok := catalog.StyleByID(settings.DefaultStyle); !ok {
			writeError(w, http.StatusBadRequest, "defaultStyle must be a supported style")
			return
		}
	}
	if !catalog.ValidTheme(settings.Theme) {
		writeError(w, http.StatusBadRequest, "theme must be one of: light, dark, system")
		return
	}

	if err := h.store.SaveSettings(r.Context(), settings); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// GetSystemPrompt handles GET /system-prompt.
func (h *Handler) GetSystemPrompt(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"systemPrompt": h.store.SystemPrompt(r.Context()),
	})
}

// PutSystemPrompt handles PUT /system-prompt.
func (h *Handler) PutSystemPrompt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SystemPrompt string `json:"systemPrompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.store.SaveSystemPrompt(r.Context(), req.SystemPrompt); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ResetSystemPrompt handles DELETE /system-prompt.
func (h *Handler) ResetSystemPrompt(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ResetSystemPrompt(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
