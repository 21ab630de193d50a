// Package generation drives batches of image-generation calls and tracks the
// state of the most recent generation session.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"imagegen/aiclient"
	"imagegen/catalog"
	"imagegen/models"
)

// ErrInvalidBatchCount is returned before any network call when the requested
// batch count is outside [1, MaxBatchSize].
var ErrInvalidBatchCount = fmt.Errorf("batch count must be between 1 and %d", catalog.MaxBatchSize)

// BatchOptions describes one user-requested batch. Style is the catalog id;
// unknown ids resolve to an empty style fragment.
type BatchOptions struct {
	Prompt       string `json:"prompt"`
	Size         string `json:"size"`
	Style        string `json:"style,omitempty"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
	BatchCount   int    `json:"batchCount"`
}

// BatchItem is the outcome of one batch member, in invocation order.
type BatchItem struct {
	Index          int    `json:"index"`
	Success        bool   `json:"success"`
	ImageURL       string `json:"imageUrl,omitempty"`
	Error          string `json:"error,omitempty"`
	GenerationTime int64  `json:"generationTime"`
}

// BatchResult aggregates the batch. Success is true when at least one member
// succeeded; HasErrors flags partial failure (the soft-error case).
type BatchResult struct {
	Success      bool                    `json:"success"`
	Results      []BatchItem             `json:"results"`
	SuccessCount int                     `json:"successCount"`
	ErrorCount   int                     `json:"errorCount"`
	HasErrors    bool                    `json:"hasErrors"`
	Error        string                  `json:"error,omitempty"`
	Images       []models.GeneratedImage `json:"-"`
}

// Orchestrator issues 1–4 sequential generation calls through the AI client
// and aggregates per-call outcomes without losing partial progress.
type Orchestrator struct {
	ai aiclient.Service
}

// NewOrchestrator creates an orchestrator backed by the given AI service.
func NewOrchestrator(ai aiclient.Service) *Orchestrator {
	return &Orchestrator{ai: ai}
}

// Run executes the batch. Calls are strictly sequential and index-ascending.
// If the very first call fails the remaining members are skipped: an
// immediate failure is treated as the service being unreachable, while
// failures after a proven success are tolerated per item. onItem, if
// non-nil, is invoked with the 1-based index before each call.
func (o *Orchestrator) Run(ctx context.Context, opts BatchOptions, onItem func(index int)) (BatchResult, error) {
	if opts.BatchCount < 1 || opts.BatchCount > catalog.MaxBatchSize {
		return BatchResult{}, ErrInvalidBatchCount
	}

	stylePrompt := ""
	if opts.Style != "" {
		if style, ok := catalog.StyleByID(opts.Style); ok {
			stylePrompt = style.Prompt
		}
	}

	results := make([]BatchItem, 0, opts.BatchCount)
	for i := 1; i <= opts.BatchCount; i++ {
		if onItem != nil {
			onItem(i)
		}
		res, err := o.ai.GenerateImage(ctx, aiclient.GenerationRequest{
			Prompt:       opts.Prompt,
			Size:         opts.Size,
			Style:        stylePrompt,
			SystemPrompt: opts.SystemPrompt,
		})
		item := BatchItem{Index: i, GenerationTime: res.GenerationTime}
		if err != nil {
			item.Error = err.Error()
			log.Printf("Batch member %d/%d failed: %v", i, opts.BatchCount, err)
		} else {
			item.Success = true
			item.ImageURL = res.ImageURL
		}
		results = append(results, item)

		if i == 1 && err != nil {
			break
		}
	}

	result := BatchResult{Results: results}
	for _, item := range results {
		if item.Success {
			result.SuccessCount++
		} else {
			result.ErrorCount++
		}
	}
	result.HasErrors = result.ErrorCount > 0

	if result.SuccessCount == 0 {
		result.Error = results[0].Error
		if result.Error == "" {
			result.Error = "image generation failed"
		}
		return result, nil
	}

	result.Success = true
	timestamp := time.Now().UnixMilli()
	for _, item := range results {
		if !item.Success {
			continue
		}
		result.Images = append(result.Images, models.GeneratedImage{
			ID:             models.NewImageID(),
			URL:            item.ImageURL,
			Prompt:         opts.Prompt,
			Style:          opts.Style,
			Size:           opts.Size,
			Timestamp:      timestamp,
			GenerationTime: item.GenerationTime,
		})
	}
	return result, nil
}

// IsValidationError reports whether err was raised before any network call.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidBatchCount)
}
