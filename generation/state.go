package generation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"imagegen/models"
)

// ErrNothingToRetry is returned by Retry when no generation has run yet.
var ErrNothingToRetry = errors.New("no previous generation to retry")

// State is the transient generation state: Idle, Generating, then Succeeded
// or Failed. A partial batch failure leaves Error set alongside usable
// Images (soft error).
type State struct {
	IsGenerating bool                    `json:"isGenerating"`
	Progress     int                     `json:"progress"`
	CurrentBatch int                     `json:"currentBatch"`
	TotalBatches int                     `json:"totalBatches"`
	Error        string                  `json:"error,omitempty"`
	Images       []models.GeneratedImage `json:"images"`
}

// Session owns the state of the most recent generation request and replays
// it on retry. State is replaced wholesale on each new request; nothing
// carries over from a failed attempt besides the request parameters.
//
// Writes come from the single UI flow, but reads may race with an in-flight
// generation, so access is guarded.
type Session struct {
	orch *Orchestrator

	mu          sync.Mutex
	state       State
	lastOptions *BatchOptions
}

// NewSession creates an idle session.
func NewSession(orch *Orchestrator) *Session {
	return &Session{orch: orch, state: State{Images: []models.GeneratedImage{}}}
}

// Generate runs a batch and updates the session state. The returned error is
// non-nil only for validation failures; a batch where every member failed is
// reported through BatchResult.Success and the Failed state.
func (s *Session) Generate(ctx context.Context, opts BatchOptions) (BatchResult, error) {
	s.mu.Lock()
	o := opts
	s.lastOptions = &o
	s.state = State{
		IsGenerating: true,
		TotalBatches: opts.BatchCount,
		Images:       []models.GeneratedImage{},
	}
	s.mu.Unlock()

	result, err := s.orch.Run(ctx, opts, func(index int) {
		s.mu.Lock()
		s.state.CurrentBatch = index
		s.mu.Unlock()
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsGenerating = false

	if err != nil {
		s.state.Error = err.Error()
		return result, err
	}
	if !result.Success {
		s.state.Error = result.Error
		return result, nil
	}

	s.state.Progress = 100
	s.state.Images = result.Images
	if result.HasErrors {
		s.state.Error = fmt.Sprintf("Generated %d/%d images successfully", result.SuccessCount, len(result.Results))
	}
	return result, nil
}

// Retry re-runs the last request with identical parameters.
func (s *Session) Retry(ctx context.Context) (BatchResult, error) {
	s.mu.Lock()
	last := s.lastOptions
	s.mu.Unlock()
	if last == nil {
		return BatchResult{}, ErrNothingToRetry
	}
	return s.Generate(ctx, *last)
}

// ClearImages resets the session to idle, dropping images and any error.
func (s *Session) ClearImages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Images = []models.GeneratedImage{}
	s.state.Error = ""
	s.state.Progress = 0
}

// ClearError drops the error message without touching images.
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = ""
}

// State returns a snapshot of the current generation state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.state
	snapshot.Images = append([]models.GeneratedImage(nil), s.state.Images...)
	return snapshot
}
