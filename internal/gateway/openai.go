package gateway

import (
	"context"
	"fmt"
	"os"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/driftlab/kaiwa/internal/config"
	"github.com/driftlab/kaiwa/internal/models"
)

// OpenAIGateway implements Gateway using the OpenAI embeddings and chat
// completions APIs. Provider failures are wrapped in models.ErrGateway and
// never retried here; every call carries a request-scoped timeout.
type OpenAIGateway struct {
	client     openaisdk.Client
	embedModel string
	chatModel  string
	dimensions int
	timeout    time.Duration
}

// NewOpenAIGateway builds a gateway from config. Returns an error if the API
// key environment variable is unset.
func NewOpenAIGateway(cfg *config.GatewayConfig) (*OpenAIGateway, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("gateway: missing API key in env %s", cfg.APIKeyEnv)
	}
	opts := []option.RequestOption{option.WithAPIKey(key)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIGateway{
		client:     openaisdk.NewClient(opts...),
		embedModel: cfg.EmbeddingModel,
		chatModel:  cfg.CompletionModel,
		dimensions: cfg.EmbeddingDimensions,
		timeout:    time.Duration(cfg.RequestTimeoutSecs) * time.Second,
	}, nil
}

// Embed returns one vector per input text, in input order.
func (g *OpenAIGateway) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	resp, err := g.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openaisdk.EmbeddingModel(g.embedModel),
	})
	if err != nil {
		return nil, fmt.Errorf("embed %d texts: %v: %w", len(texts), err, models.ErrGateway)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embed: got %d vectors for %d texts: %w", len(resp.Data), len(texts), models.ErrGateway)
	}
	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Complete returns the chat model's completion for prompt.
func (g *OpenAIGateway) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	resp, err := g.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: shared.ChatModel(g.chatModel),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
		Temperature: param.NewOpt(0.0),
	})
	if err != nil {
		return "", fmt.Errorf("complete: %v: %w", err, models.ErrGateway)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("complete: no choices returned: %w", models.ErrGateway)
	}
	return resp.Choices[0].Message.Content, nil
}

// Dimensions returns the embedding vector dimension.
func (g *OpenAIGateway) Dimensions() int {
	return g.dimensions
}
