package llm

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"docintell/internal/rag/interfaces"
	"docintell/internal/rag/schema"
)

// OpenAI is a chat-completion client for the OpenAI API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a new OpenAI chat client.
func NewOpenAI(apiKey, model string) (*OpenAI, error) {
	config := openai.DefaultConfig(apiKey)
	client := openai.NewClientWithConfig(config)
	return &OpenAI{client: client, model: model}, nil
}

// Chat sends the message sequence to the model and returns the single
// assistant reply.
func (o *OpenAI) Chat(ctx context.Context, messages []schema.ChatMessage, opts schema.GenerateOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: &opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []schema.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}
	return out
}

// compile-time check to ensure OpenAI implements the LLM interface
var _ interfaces.LLM = (*OpenAI)(nil)
