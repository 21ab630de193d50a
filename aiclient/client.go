// Package aiclient wraps the remote chat-completions service that performs
// both image generation and prompt enhancement. The service is an opaque
// endpoint: it accepts a model id plus a message list and returns a text
// payload that is either an image URL or enhanced prompt text.
package aiclient

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"imagegen/config"
)

// Sentinel errors for remote service failures.
var (
	// ErrRequestFailed is returned when the service responds with a
	// non-success HTTP status or the call cannot complete. Timeouts are
	// reported the same way.
	ErrRequestFailed = errors.New("ai service request failed")
	// ErrEmptyResult is returned when the service responds 200 but the
	// message content is missing or unusable.
	ErrEmptyResult = errors.New("no content received from ai service")
)

// Per-operation request deadlines.
const (
	GenerateTimeout = 300 * time.Second
	EnhanceTimeout  = 30 * time.Second
)

// GenerationRequest describes one image-generation call. Style carries the
// resolved style prompt fragment, not the catalog id.
type GenerationRequest struct {
	Prompt       string
	Size         string
	Style        string
	SystemPrompt string
}

// GenerationResult is the outcome of one generation call. GenerationTime is
// the wall-clock duration of the call in milliseconds and is populated on
// failure as well.
type GenerationResult struct {
	ImageURL       string
	GenerationTime int64
}

// EnhancementRequest describes one prompt-enhancement call.
type EnhancementRequest struct {
	OriginalPrompt string
	StyleContext   string
	SystemPrompt   string
}

// Service is the seam between the orchestration layer and the remote AI
// endpoint. Client is the production implementation; tests use Mock.
type Service interface {
	GenerateImage(ctx context.Context, req GenerationRequest) (GenerationResult, error)
	EnhancePrompt(ctx context.Context, req EnhancementRequest) (string, error)
}

// Client calls the remote chat-completions endpoint. It holds no mutable
// state; one instance is constructed at startup and shared by all callers.
type Client struct {
	imageModel   string
	enhanceModel string
	opts         []option.RequestOption
}

// New creates a client from the AI service configuration.
func New(cfg *config.AIService) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	if cfg.CustomerID != "" {
		opts = append(opts, option.WithHeader("customerId", cfg.CustomerID))
	}
	return &Client{
		imageModel:   cfg.ImageModel,
		enhanceModel: cfg.EnhanceModel,
		opts:         opts,
	}
}

// GenerateImage issues a single generation call and returns the image URL the
// model produced. One attempt, no retries.
func (c *Client) GenerateImage(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	start := time.Now()

	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultImageSystemPrompt
	}

	client := openai.NewClient(c.opts...)
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.imageModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(BuildImagePrompt(req.Prompt, req.Style, req.Size)),
		},
	}, option.WithRequestTimeout(GenerateTimeout))

	result := GenerationResult{GenerationTime: time.Since(start).Milliseconds()}
	if err != nil {
		return result, c.classifyError("generate", err)
	}

	imageURL := ""
	if len(resp.Choices) > 0 {
		imageURL = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	if imageURL == "" {
		return result, fmt.Errorf("%w: no image URL in response", ErrEmptyResult)
	}
	// The service returns the URL as plain text; check the scheme before
	// surfacing it so a refusal message is not rendered as an image.
	if u, err := url.Parse(imageURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return result, fmt.Errorf("%w: response is not an image URL", ErrEmptyResult)
	}

	result.ImageURL = imageURL
	return result, nil
}

// EnhancePrompt rewrites the user prompt with richer visual detail while
// preserving its intent. Returns the enhanced text only.
func (c *Client) EnhancePrompt(ctx context.Context, req EnhancementRequest) (string, error) {
	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultEnhanceSystemPrompt
	}

	log.Printf("Enhancing prompt: %q", req.OriginalPrompt)

	client := openai.NewClient(c.opts...)
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.enhanceModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(BuildEnhancementInstruction(req.OriginalPrompt, req.StyleContext)),
		},
	}, option.WithRequestTimeout(EnhanceTimeout))
	if err != nil {
		return "", c.classifyError("enhance", err)
	}

	enhanced := ""
	if len(resp.Choices) > 0 {
		enhanced = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	if enhanced == "" {
		return "", fmt.Errorf("%w: no enhanced prompt in response", ErrEmptyResult)
	}
	return enhanced, nil
}

// classifyError maps transport and API errors onto the request-failed
// sentinel. HTTP failures keep their status code in the message.
func (c *Client) classifyError(op string, err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return fmt.Errorf("%w: %s returned status %d", ErrRequestFailed, op, apierr.StatusCode)
	}
	return fmt.Errorf("%w: %s: %v", ErrRequestFailed, op, err)
}
