// Package embedding provides clients that turn text into fixed-dimension
// vectors via an external embedding model. Batch and single-item embedding
// share one code path: a single text is a batch of size one.
package embedding

import (
	"fmt"

	"docintell/internal/config"
	"docintell/internal/rag/interfaces"
)

// NewModel is a factory that builds the embedding client selected by the
// configuration. Handles are constructed once at startup and injected into
// the pipelines.
func NewModel(cfg *config.EmbeddingConfig) (interfaces.EmbeddingModel, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIModel(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case "ollama":
		return NewOllamaModel(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
