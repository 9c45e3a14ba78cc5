package openai

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// Config configures the OpenAI embeddings client.
type Config struct {
	APIKeyEnv string // env var holding the API key, defaults to OPENAI_API_KEY
	Model     string // embedding model, defaults to text-embedding-3-small
	BaseURL   string // optional override for OpenAI-compatible servers
	Dimension int    // required for models the client has no default for
}

// modelDimensions holds the output dimensionality of the models the client
// knows about. Anything else needs Config.Dimension.
var modelDimensions = map[string]int{
	string(openai.SmallEmbedding3): 1536,
	string(openai.LargeEmbedding3): 3072,
	string(openai.AdaEmbeddingV2):  1536,
}

// Client embeds text through the OpenAI embeddings API.
type Client struct {
	client *openai.Client
	model  string
	dim    int
}

// New creates an embeddings client from the configuration. The API key is
// read from the environment so it never lands in config files.
func New(cfg Config) (*Client, error) {
	keyEnv := cfg.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(keyEnv)
	if key == "" {
		return nil, fmt.Errorf("openai: missing API key in env %s", keyEnv)
	}

	model := cfg.Model
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	dim := cfg.Dimension
	if dim <= 0 {
		var ok bool
		if dim, ok = modelDimensions[model]; !ok {
			return nil, fmt.Errorf("openai: unknown model %q, set an explicit dimension", model)
		}
	}

	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		dim:    dim,
	}, nil
}

// Model returns the embedding model identifier.
func (c *Client) Model() string { return c.model }

// Dimension returns the dimensionality of the produced vectors.
func (c *Client) Dimension() int { return c.dim }

// Embed sends all texts in one batched request and returns vectors in input
// order. A failure is a single batch-level error.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: embeddings request: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai: got %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("openai: embedding index %d out of range", d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for i, x := range d.Embedding {
			v[i] = float32(x)
		}
		if len(v) != c.dim {
			return nil, fmt.Errorf("openai: model %s returned dimension %d, expected %d", c.model, len(v), c.dim)
		}
		vectors[d.Index] = v
	}
	return vectors, nil
}
