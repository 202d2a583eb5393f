package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	ollama "github.com/ollama/ollama/api"

	"docintell/internal/rag/interfaces"
)

// OllamaModel is an embedding client for a local Ollama instance.
type OllamaModel struct {
	client *ollama.Client
	model  string
}

// NewOllamaModel creates a new Ollama embedding client. An empty baseURL
// defaults to the standard local endpoint.
func NewOllamaModel(model, baseURL string) (*OllamaModel, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	hc := &http.Client{Timeout: 120 * time.Second}
	return &OllamaModel{client: ollama.NewClient(parsedURL, hc), model: model}, nil
}

// EmbedBatch generates one embedding per input text using Ollama's batch
// embed endpoint.
func (m *OllamaModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := m.client.Embed(ctx, &ollama.EmbedRequest{
		Model: m.model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get embeddings from ollama: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: requested %d, got %d", len(texts), len(resp.Embeddings))
	}
	return resp.Embeddings, nil
}

// compile-time check to ensure OllamaModel implements the EmbeddingModel interface
var _ interfaces.EmbeddingModel = (*OllamaModel)(nil)
