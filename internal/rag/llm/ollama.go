package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	ollama "github.com/ollama/ollama/api"

	"docintell/internal/rag/interfaces"
	"docintell/internal/rag/schema"
)

// Ollama is a chat-completion client for a local Ollama instance.
type Ollama struct {
	client *ollama.Client
	model  string
}

// NewOllama creates a new Ollama chat client. An empty baseURL defaults to
// the standard local endpoint.
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	hc := &http.Client{Timeout: 120 * time.Second}
	return &Ollama{client: ollama.NewClient(parsedURL, hc), model: model}, nil
}

// Chat sends the message sequence to the model non-streamed and returns the
// assistant reply.
func (o *Ollama) Chat(ctx context.Context, messages []schema.ChatMessage, opts schema.GenerateOptions) (string, error) {
	msgs := make([]ollama.Message, len(messages))
	for i, m := range messages {
		msgs[i] = ollama.Message{Role: m.Role, Content: m.Content}
	}

	stream := false
	var reply string
	err := o.client.Chat(ctx, &ollama.ChatRequest{
		Model:    o.model,
		Messages: msgs,
		Stream:   &stream,
		Options: map[string]interface{}{
			"temperature": opts.Temperature,
			"num_predict": opts.MaxTokens,
		},
	}, func(resp ollama.ChatResponse) error {
		reply = resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to chat with ollama: %w", err)
	}
	return reply, nil
}

// compile-time check to ensure Ollama implements the LLM interface
var _ interfaces.LLM = (*Ollama)(nil)
