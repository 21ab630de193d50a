package aiclient

import "context"

// Mock is a scriptable Service used by tests and local development.
type Mock struct {
	GenerateFunc func(ctx context.Context, req GenerationRequest) (GenerationResult, error)
	EnhanceFunc  func(ctx context.Context, req EnhancementRequest) (string, error)

	GenerateCalls []GenerationRequest
	EnhanceCalls  []EnhancementRequest
}

func (m *Mock) GenerateImage(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	m.GenerateCalls = append(m.GenerateCalls, req)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return GenerationResult{ImageURL: "https://example.com/mock.png", GenerationTime: 1}, nil
}

func (m *Mock) EnhancePrompt(ctx context.Context, req EnhancementRequest) (string, error) {
	m.EnhanceCalls = append(m.EnhanceCalls, req)
	if m.EnhanceFunc != nil {
		return m.EnhanceFunc(ctx, req)
	}
	return "enhanced: " + req.OriginalPrompt, nil
}
