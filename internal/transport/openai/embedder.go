// Package openai adapts OpenAI-compatible embedding and chat-completion APIs
// to the domain collaborator contracts.
package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/headrag/internal/domain"
	"github.com/kailas-cloud/headrag/internal/metrics"
)

// Config holds the provider settings shared by the embedder and the completer.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	User       string
	Provider   string
	Logger     *zap.Logger
}

func newClient(cfg *Config) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// Embedder embeds one text per request.
type Embedder struct {
	client     *openai.Client
	model      string
	dimensions int
	user       string
	provider   string
	logger     *zap.Logger
}

// NewEmbedder creates an embedding provider. Dimensions > 0 requests
// shortened vectors and is enforced on every response.
func NewEmbedder(cfg *Config) *Embedder {
	return &Embedder{
		client:     newClient(cfg),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		user:       cfg.User,
		provider:   cfg.Provider,
		logger:     cfg.Logger,
	}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.user,
		Dimensions:     e.dimensions,
	}

	call := startCall(metrics.OpEmbedding, e.provider, e.model)
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		perr := parseAPIError(err, domain.ErrEmbeddingProviderError)
		call.failed(errorType(perr))
		return domain.EmbeddingResult{}, perr
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		call.failed("empty_response")
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}
	vec := resp.Data[0].Embedding
	if e.dimensions > 0 && len(vec) != e.dimensions {
		call.failed("dimension_mismatch")
		return domain.EmbeddingResult{}, fmt.Errorf("model %s returned %d dimensions, want %d: %w",
			e.model, len(vec), e.dimensions, domain.ErrEmbeddingDimensionMismatch)
	}

	call.succeeded(resp.Usage.PromptTokens, 0, resp.Usage.TotalTokens)
	return domain.EmbeddingResult{
		Embedding:    vec,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels, which costs no tokens.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	return listModels(ctx, e.client)
}

func listModels(ctx context.Context, client *openai.Client) error {
	if _, err := client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
