package splitter

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter counts tokens the way the embedding and chat models do, so
// chunk records carry a meaningful token figure.
type TokenCounter struct {
	tokenizer *tiktoken.Tiktoken
}

// NewTokenCounter initializes a counter on the cl100k_base encoding, the
// tokenizer behind gpt-3.5/4 and the text-embedding model family.
func NewTokenCounter() (*TokenCounter, error) {
	tke, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}
	return &TokenCounter{tokenizer: tke}, nil
}

// Count returns the number of tokens in text.
func (c *TokenCounter) Count(text string) int {
	return len(c.tokenizer.Encode(text, nil, nil))
}
