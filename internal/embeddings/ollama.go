package embeddings

import (
	"context"
	"fmt"
	"strings"

	chromem "github.com/philippgille/chromem-go"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "nomic-embed-text"
)

// OllamaEmbedder generates embeddings using a local Ollama instance through
// chromem-go's Ollama client.
type OllamaEmbedder struct {
	model      string
	dimensions int
	embed      chromem.EmbeddingFunc
}

// NewOllamaEmbedder creates a new Ollama embedder.
// baseURL defaults to http://localhost:11434 and model to nomic-embed-text.
// dimensions is informational; Ollama decides the vector size.
func NewOllamaEmbedder(model string, dimensions int, baseURL string) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	// chromem expects the API root including /api.
	apiURL := strings.TrimSuffix(baseURL, "/")
	if !strings.HasSuffix(apiURL, "/api") {
		apiURL += "/api"
	}
	return &OllamaEmbedder{
		model:      model,
		dimensions: dimensions,
		embed:      chromem.NewEmbeddingFuncOllama(model, apiURL),
	}
}

func (e *OllamaEmbedder) Name() string {
	return "ollama/" + e.model
}

func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}

// Embed calls Ollama once per text; the endpoint has no batch form.
func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := e.embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("ollama embedding request failed: %w", err)
		}
		out = append(out, vec)
	}
	return out, nil
}
