// Package llm provides chat-completion clients for the configured language
// model provider.
package llm

import (
	"fmt"

	"docintell/internal/config"
	"docintell/internal/rag/interfaces"
)

// NewClient is a factory that builds the chat client selected by the
// configuration.
func NewClient(cfg *config.LLMConfig) (interfaces.LLM, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case "ollama":
		return NewOllama(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
