// Package api exposes the HTTP surface: image generation, prompt
// enhancement, persisted history and settings, and server-side downloads.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gorilla/mux"

	"imagegen/aiclient"
	"imagegen/catalog"
	"imagegen/download"
	"imagegen/generation"
	"imagegen/history"
)

// Handler holds the injected collaborators for all API routes.
type Handler struct {
	ai        aiclient.Service
	session   *generation.Session
	store     *history.Store
	downloads *download.Manager
	autoSave  bool
}

// NewHandler wires the API against its collaborators. When autoSave is set,
// successful generations are also fetched into the local download directory.
func NewHandler(ai aiclient.Service, session *generation.Session, store *history.Store, downloads *download.Manager, autoSave bool) *Handler {
	return &Handler{ai: ai, session: session, store: store, downloads: downloads, autoSave: autoSave}
}

// Register attaches all API routes to the router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/generate", h.Generate).Methods(http.MethodPost)
	r.HandleFunc("/generate", h.GenerateInfo).Methods(http.MethodGet)
	r.HandleFunc("/enhance", h.Enhance).Methods(http.MethodPost)
	r.HandleFunc("/enhance", h.EnhanceInfo).Methods(http.MethodGet)

	r.HandleFunc("/retry", h.Retry).Methods(http.MethodPost)
	r.HandleFunc("/status", h.Status).Methods(http.MethodGet)

	r.HandleFunc("/history", h.ListHistory).Methods(http.MethodGet)
	r.HandleFunc("/history", h.ClearHistory).Methods(http.MethodDelete)
	r.HandleFunc("/history/{id}", h.RemoveHistoryItem).Methods(http.MethodDelete)
	r.HandleFunc("/history/{id}/share", h.ShareHistoryItem).Methods(http.MethodGet)

	r.HandleFunc("/settings", h.GetSettings).Methods(http.MethodGet)
	r.HandleFunc("/settings", h.PutSettings).Methods(http.MethodPut)

	r.HandleFunc("/system-prompt", h.GetSystemPrompt).Methods(http.MethodGet)
	r.HandleFunc("/system-prompt", h.PutSystemPrompt).Methods(http.MethodPut)
	r.HandleFunc("/system-prompt", h.ResetSystemPrompt).Methods(http.MethodDelete)

	r.HandleFunc("/download", h.Download).Methods(http.MethodPost)
	r.HandleFunc("/download", h.DownloadStatus).Methods(http.MethodGet)
}

type generateRequest struct {
	Prompt       string `json:"prompt"`
	Size         string `json:"size"`
	Style        string `json:"style"`
	SystemPrompt string `json:"systemPrompt"`
	BatchCount   *int   `json:"batchCount"`
}

// Generate handles POST /generate: validate, run the batch, persist
// successes, and report the aggregated outcome.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required and must be a non-empty string")
		return
	}
	if utf8.RuneCountInString(req.Prompt) > catalog.MaxPromptLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Prompt must be %d characters or less", catalog.MaxPromptLength))
		return
	}

	size := req.Size
	if size == "" {
		size = catalog.DefaultSize
	}
	if _, ok := catalog.SizeByValue(size); !ok {
		writeError(w, http.StatusBadRequest, "Invalid size. Must be one of: "+strings.Join(catalog.SizeValues(), ", "))
		return
	}

	batchCount := catalog.DefaultBatchSize
	if req.BatchCount != nil {
		batchCount = *req.BatchCount
	}
	if batchCount < 1 || batchCount > catalog.MaxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Batch count must be between 1 and %d", catalog.MaxBatchSize))
		return
	}

	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = h.store.SystemPrompt(r.Context())
	}

	log.Printf("Received generation request. Prompt: %q, Size: %s, Style: %q, Batch: %d",
		req.Prompt, size, req.Style, batchCount)

	result, err := h.session.Generate(r.Context(), generation.BatchOptions{
		Prompt:       req.Prompt,
		Size:         size,
		Style:        req.Style,
		SystemPrompt: systemPrompt,
		BatchCount:   batchCount,
	})
	if err != nil {
		if generation.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !result.Success {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   result.Error,
			"results": result.Results,
		})
		return
	}

	if h.store.LoadSettings(r.Context()).SaveHistory {
		if err := h.store.Add(r.Context(), result.Images...); err != nil {
			log.Printf("Warning: could not persist history: %v", err)
		}
	}

	if h.autoSave && len(result.Images) > 0 {
		if err := h.downloads.DownloadAll(r.Context(), result.Images); err != nil {
			log.Printf("Warning: could not save local copies: %v", err)
		}
	}

	var totalTime int64
	for _, item := range result.Results {
		totalTime += item.GenerationTime
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"results":      result.Results,
		"successCount": result.SuccessCount,
		"errorCount":   result.ErrorCount,
		"hasErrors":    result.HasErrors,
		"images":       result.Images,
		"metadata": map[string]any{
			"prompt":              req.Prompt,
			"size":                size,
			"style":               req.Style,
			"batchCount":          batchCount,
			"timestamp":           time.Now().UTC().Format(time.RFC3339),
			"totalGenerationTime": download.FormatGenerationTime(totalTime),
		},
	})
}

// GenerateInfo handles GET /generate: static capability description.
func (h *Handler) GenerateInfo(w http.ResponseWriter, r *http.Request) {
	styles := make([]map[string]string, len(catalog.Styles))
	for i, s := range catalog.Styles {
		styles[i] = map[string]string{"id": s.ID, "name": s.Name}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "AI Image Generation API",
		"endpoints": map[string]string{
			"generate": "POST /generate - Generate AI images",
			"enhance":  "POST /enhance - Enhance prompts",
		},
		"supportedSizes":  catalog.SizeValues(),
		"supportedStyles": styles,
		"limits": map[string]any{
			"maxPromptLength": catalog.MaxPromptLength,
			"maxBatchSize":    catalog.MaxBatchSize,
			"timeout":         "5 minutes",
		},
	})
}

type enhanceRequest struct {
	OriginalPrompt string `json:"originalPrompt"`
	Style          string `json:"style"`
	SystemPrompt   string `json:"systemPrompt"`
}

// Enhance handles POST /enhance: rewrite the prompt with richer detail.
func (h *Handler) Enhance(w http.ResponseWriter, r *http.Request) {
	var req enhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.OriginalPrompt) == "" {
		writeError(w, http.StatusBadRequest, "Original prompt is required and must be a non-empty string")
		return
	}
	if utf8.RuneCountInString(req.OriginalPrompt) > catalog.MaxPromptLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Original prompt must be %d characters or less", catalog.MaxPromptLength))
		return
	}

	styleContext := ""
	if req.Style != "" {
		if style, ok := catalog.StyleByID(req.Style); ok {
			styleContext = fmt.Sprintf("%s style: %s", style.Name, style.Description)
		}
	}

	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = h.store.SystemPrompt(r.Context())
	}

	enhanced, err := h.ai.EnhancePrompt(r.Context(), aiclient.EnhancementRequest{
		OriginalPrompt: req.OriginalPrompt,
		StyleContext:   styleContext,
		SystemPrompt:   systemPrompt,
	})
	if err != nil {
		log.Printf("Prompt enhancement failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
			"details": "An unexpected error occurred during prompt enhancement",
		})
		return
	}

	styleUsed := any(nil)
	if req.Style != "" {
		styleUsed = req.Style
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"originalPrompt": req.OriginalPrompt,
		"enhancedPrompt": enhanced,
		"style":          req.Style,
		"metadata": map[string]any{
			"timestamp":         time.Now().UTC().Format(time.RFC3339),
			"styleUsed":         styleUsed,
			"enhancementLength": len(enhanced),
		},
	})
}

// EnhanceInfo handles GET /enhance: static capability description.
func (h *Handler) EnhanceInfo(w http.ResponseWriter, r *http.Request) {
	styles := make([]map[string]string, len(catalog.Styles))
	for i, s := range catalog.Styles {
		styles[i] = map[string]string{"id": s.ID, "name": s.Name, "description": s.Description}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "AI Prompt Enhancement API",
		"description":     "Enhance user prompts for better AI image generation results",
		"supportedStyles": styles,
		"usage": map[string]any{
			"method":         "POST",
			"requiredFields": []string{"originalPrompt"},
			"optionalFields": []string{"style", "systemPrompt"},
			"limits": map[string]any{
				"maxPromptLength": catalog.MaxPromptLength,
				"timeout":         "30 seconds",
			},
		},
	})
}

// Retry handles POST /retry: replay the last generation request verbatim.
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	result, err := h.session.Retry(r.Context())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !result.Success {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   result.Error,
			"results": result.Results,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"results":      result.Results,
		"successCount": result.SuccessCount,
		"errorCount":   result.ErrorCount,
		"hasErrors":    result.HasErrors,
		"images":       result.Images,
	})
}

// Status handles GET /status: current generation and download state.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"generation": h.session.State(),
		"download":   h.downloads.State(),
	})
}
