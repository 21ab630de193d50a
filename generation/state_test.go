package generation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"imagegen/aiclient"
)

func TestSessionGenerateSuccess(t *testing.T) {
	mock := &aiclient.Mock{}
	session := NewSession(NewOrchestrator(mock))

	result, err := session.Generate(context.Background(), BatchOptions{
		Prompt:     "a cat",
		Size:       "1024x1024",
		BatchCount: 2,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("Generate() success = false")
	}

	state := session.State()
	if state.IsGenerating {
		t.Error("IsGenerating = true after completion")
	}
	if state.Progress != 100 {
		t.Errorf("Progress = %d, want 100", state.Progress)
	}
	if state.CurrentBatch != 2 || state.TotalBatches != 2 {
		t.Errorf("batch counters = %d/%d, want 2/2", state.CurrentBatch, state.TotalBatches)
	}
	if state.Error != "" {
		t.Errorf("Error = %q, want empty", state.Error)
	}
	if len(state.Images) != 2 {
		t.Errorf("Images = %d, want 2", len(state.Images))
	}
}

func TestSessionGeneratePartialFailureSetsSoftError(t *testing.T) {
	call := 0
	mock := &aiclient.Mock{
		GenerateFunc: func(ctx context.Context, req aiclient.GenerationRequest) (aiclient.GenerationResult, error) {
			call++
			if call == 3 {
				return aiclient.GenerationResult{}, fmt.Errorf("%w: generate returned status 500", aiclient.ErrRequestFailed)
			}
			return aiclient.GenerationResult{ImageURL: "https://example.com/mock.png"}, nil
		},
	}
	session := NewSession(NewOrchestrator(mock))

	result, err := session.Generate(context.Background(), BatchOptions{
		Prompt:     "a cat",
		Size:       "1024x1024",
		BatchCount: 3,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !result.Success || !result.HasErrors {
		t.Fatalf("result = success=%v hasErrors=%v, want partial success", result.Success, result.HasErrors)
	}

	state := session.State()
	if state.Error != "Generated 2/3 images successfully" {
		t.Errorf("Error = %q, want the soft-error message", state.Error)
	}
	if len(state.Images) != 2 {
		t.Errorf("Images = %d, want the 2 successes", len(state.Images))
	}
}

func TestSessionGenerateTotalFailure(t *testing.T) {
	mock := &aiclient.Mock{
		GenerateFunc: func(ctx context.Context, req aiclient.GenerationRequest) (aiclient.GenerationResult, error) {
			return aiclient.GenerationResult{}, fmt.Errorf("%w: generate returned status 502", aiclient.ErrRequestFailed)
		},
	}
	session := NewSession(NewOrchestrator(mock))

	result, err := session.Generate(context.Background(), BatchOptions{
		Prompt:     "a cat",
		Size:       "1024x1024",
		BatchCount: 2,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Success {
		t.Fatal("success = true, want false")
	}

	state := session.State()
	if state.Error == "" {
		t.Error("Error = empty, want the failure message")
	}
	if len(state.Images) != 0 {
		t.Errorf("Images = %d, want none", len(state.Images))
	}
	if state.Progress != 0 {
		t.Errorf("Progress = %d, want 0 on total failure", state.Progress)
	}
}

func TestSessionGenerateResetsPreviousState(t *testing.T) {
	mock := &aiclient.Mock{}
	session := NewSession(NewOrchestrator(mock))

	if _, err := session.Generate(context.Background(), BatchOptions{Prompt: "a cat", Size: "1024x1024", BatchCount: 2}); err != nil {
		t.Fatalf("first Generate() error = %v", err)
	}

	failing := errors.New("boom")
	mock.GenerateFunc = func(ctx context.Context, req aiclient.GenerationRequest) (aiclient.GenerationResult, error) {
		return aiclient.GenerationResult{}, failing
	}
	if _, err := session.Generate(context.Background(), BatchOptions{Prompt: "a dog", Size: "1024x1024", BatchCount: 1}); err != nil {
		t.Fatalf("second Generate() error = %v", err)
	}

	state := session.State()
	if len(state.Images) != 0 {
		t.Errorf("Images = %d, want previous images dropped on new request", len(state.Images))
	}
	if state.TotalBatches != 1 {
		t.Errorf("TotalBatches = %d, want 1 from the new request", state.TotalBatches)
	}
}

func TestSessionRetry(t *testing.T) {
	mock := &aiclient.Mock{}
	session := NewSession(NewOrchestrator(mock))

	if _, err := session.Retry(context.Background()); !errors.Is(err, ErrNothingToRetry) {
		t.Fatalf("Retry() before any generation: error = %v, want ErrNothingToRetry", err)
	}

	opts := BatchOptions{
		Prompt:       "a cat",
		Size:         "512x512",
		Style:        "fantasy",
		SystemPrompt: "custom",
		BatchCount:   2,
	}
	if _, err := session.Generate(context.Background(), opts); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	result, err := session.Retry(context.Background())
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if !result.Success {
		t.Fatal("Retry() success = false")
	}
	if len(mock.GenerateCalls) != 4 {
		t.Fatalf("generate calls = %d, want 4 (2 original + 2 retried)", len(mock.GenerateCalls))
	}
	replayed := mock.GenerateCalls[2]
	if replayed.Prompt != "a cat" || replayed.Size != "512x512" || replayed.SystemPrompt != "custom" {
		t.Errorf("retry replayed %+v, want identical parameters", replayed)
	}
	if replayed.Style != "fantasy art, magical, ethereal, mystical" {
		t.Errorf("retry style = %q, want the fantasy fragment", replayed.Style)
	}
}

func TestSessionClear(t *testing.T) {
	mock := &aiclient.Mock{}
	session := NewSession(NewOrchestrator(mock))

	if _, err := session.Generate(context.Background(), BatchOptions{Prompt: "a cat", Size: "1024x1024", BatchCount: 1}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	session.ClearImages()
	state := session.State()
	if len(state.Images) != 0 || state.Error != "" || state.Progress != 0 {
		t.Errorf("state after ClearImages = %+v, want images, error, progress reset", state)
	}
}

func TestSessionStateSnapshotIsIsolated(t *testing.T) {
	mock := &aiclient.Mock{}
	session := NewSession(NewOrchestrator(mock))

	if _, err := session.Generate(context.Background(), BatchOptions{Prompt: "a cat", Size: "1024x1024", BatchCount: 1}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	snapshot := session.State()
	snapshot.Images[0].Prompt = "mutated"
	if session.State().Images[0].Prompt != "a cat" {
		t.Error("mutating a snapshot leaked into session state")
	}
}
