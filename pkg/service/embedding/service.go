package embedding

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/vlah-sh/mosaic/pkg/domain/model"
)

// Service produces query embeddings for similarity retrieval. Callers must
// treat failures as a degradation signal, not a hard error: selection falls
// back to usage-only ranking when no vector is available.
type Service interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DefaultTimeout bounds a single embedding call so an unreachable producer
// cannot stall a generation
const DefaultTimeout = 10 * time.Second

// client implements Service on top of a gollem LLM client
type client struct {
	llmClient gollem.LLMClient
	dimension int
	timeout   time.Duration
}

// Option is a functional option for client configuration
type Option func(*client)

// WithDimension overrides the embedding dimensionality
func WithDimension(dimension int) Option {
	return func(c *client) {
		c.dimension = dimension
	}
}

// WithTimeout overrides the per-call timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *client) {
		c.timeout = timeout
	}
}

// New creates a new embedding service with the provided LLM client
func New(llmClient gollem.LLMClient, opts ...Option) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &client{
		llmClient: llmClient,
		dimension: model.EmbeddingDimension,
		timeout:   DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, goerr.New("embedding text is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	embeddings, err := c.llmClient.GenerateEmbedding(ctx, c.dimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding")
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, goerr.New("embedding generation returned empty result")
	}

	embedding := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		embedding[i] = float32(v)
	}

	return embedding, nil
}
