package openai

import (
	"context"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/headrag/internal/domain"
	"github.com/kailas-cloud/headrag/internal/metrics"
)

// minTemperature is the lowest temperature go-openai sends on the wire:
// a literal 0 is dropped by omitempty and the server falls back to its default.
const minTemperature = math.SmallestNonzeroFloat32

// Completer is a chat-completion provider using the OpenAI-compatible API.
type Completer struct {
	client    *openai.Client
	model     string
	maxTokens int
	user      string
	provider  string
	logger    *zap.Logger
}

// CompleterConfig holds completion-specific settings on top of Config.
type CompleterConfig struct {
	Config
	MaxTokens int
}

// NewCompleter creates an OpenAI-compatible chat-completion provider.
func NewCompleter(cfg *CompleterConfig) *Completer {
	return &Completer{
		client:    newClient(&cfg.Config),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		user:      cfg.User,
		provider:  cfg.Provider,
		logger:    cfg.Logger,
	}
}

// Complete implements domain.Completer with deterministic decoding.
func (c *Completer) Complete(
	ctx context.Context, systemInstruction, userContent string,
) (domain.CompletionResult, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: userContent},
		},
		Temperature: minTemperature,
		User:        c.user,
	}
	if c.maxTokens > 0 {
		req.MaxTokens = c.maxTokens
	}

	call := startCall(metrics.OpCompletion, c.provider, c.model)
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		perr := parseAPIError(err, domain.ErrCompletionProviderError)
		call.failed(errorType(perr))
		return domain.CompletionResult{}, perr
	}

	if len(resp.Choices) == 0 {
		call.failed("empty_response")
		return domain.CompletionResult{}, fmt.Errorf("no choices returned: %w", domain.ErrCompletionProviderError)
	}

	duration := call.succeeded(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)

	c.logger.Debug("Chat completion finished",
		zap.String("model", c.model),
		zap.Duration("duration", duration),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return domain.CompletionResult{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels.
func (c *Completer) HealthCheck(ctx context.Context) error {
	return listModels(ctx, c.client)
}
