package pipeline

import (
	"context"
	"strings"

	"docintell/internal/config"
	"docintell/internal/errs"
	"docintell/internal/models"
	"docintell/internal/rag/interfaces"
	"docintell/internal/rag/schema"
	"docintell/pkg/logger"
)

// Generation settings for grounded answering.
const (
	answerTemperature = 0.7
	answerMaxTokens   = 1000
	titleMaxRunes     = 50
)

const systemPrompt = `You are a helpful assistant that answers questions based on the provided document context.

Rules:
- Answer using only the information in the context below.
- If the context does not contain enough information to answer, say so explicitly.
- Reference the documents you drew from when it helps the user verify the answer.
- Keep answers concise and factual.`

const noContextNote = "No relevant documents were found for this question. Tell the user that you could not find relevant information in their documents."

// Source is one retrieved chunk that grounded the answer.
type Source struct {
	Content    string          `json:"content"`
	Metadata   schema.Metadata `json:"metadata"`
	Similarity float32         `json:"similarity"`
}

// ChatResult is the outcome of one question-answer turn.
type ChatResult struct {
	ConversationID string   `json:"conversation_id"`
	Answer         string   `json:"answer"`
	Sources        []Source `json:"sources"`
}

// Chat answers questions over the indexed corpus, grounding the model on
// retrieved chunks and persisting each exchange to the conversation log.
type Chat struct {
	log           *logger.Logger
	cfg           *config.RAGConfig
	conversations interfaces.ConversationStore
	embedder      interfaces.EmbeddingModel
	index         interfaces.VectorIndex
	llm           interfaces.LLM
}

// NewChat wires the chat pipeline.
func NewChat(
	cfg *config.RAGConfig,
	conversations interfaces.ConversationStore,
	embedder interfaces.EmbeddingModel,
	index interfaces.VectorIndex,
	llm interfaces.LLM,
	log *logger.Logger,
) *Chat {
	return &Chat{
		log:           log,
		cfg:           cfg,
		conversations: conversations,
		embedder:      embedder,
		index:         index,
		llm:           llm,
	}
}

// Ask runs one grounded question-answer turn. An empty conversationID starts
// a new conversation titled after the question; a non-empty one must belong
// to the owner. The exchange is persisted only after the model has answered,
// so a failed turn leaves no half-written history.
func (c *Chat) Ask(ctx context.Context, ownerID uint, conversationID, question string) (*ChatResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errs.Validation("question is required")
	}

	conv, err := c.resolveConversation(ctx, ownerID, conversationID, question)
	if err != nil {
		return nil, err
	}

	embeddings, err := c.embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return nil, errs.Upstream("embed", err)
	}

	hits, err := c.index.Query(ctx, embeddings[0], c.cfg.MaxContextChunks, schema.Metadata{
		schema.MetadataKeyOwnerID: ownerID,
	})
	if err != nil {
		return nil, errs.Upstream("vector search", err)
	}

	history, err := c.conversations.RecentMessages(ctx, conv.ID, c.cfg.HistoryPersistLimit)
	if err != nil {
		return nil, err
	}

	messages := c.buildMessages(hits, history, question)
	answer, err := c.llm.Chat(ctx, messages, schema.GenerateOptions{
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	})
	if err != nil {
		return nil, errs.Upstream("generate", err)
	}

	userMsg := &models.Message{Role: models.RoleUser, Content: question}
	assistantMsg := &models.Message{Role: models.RoleAssistant, Content: answer}
	if err := c.conversations.AppendExchange(ctx, conv.ID, userMsg, assistantMsg); err != nil {
		return nil, err
	}

	sources := make([]Source, len(hits))
	for i, hit := range hits {
		sources[i] = Source{
			Content:    hit.Content,
			Metadata:   hit.Metadata,
			Similarity: hit.Similarity(),
		}
	}

	c.log.WithField("conversation_id", conv.ID).
		WithField("sources", len(sources)).
		Debug("answered question")

	return &ChatResult{
		ConversationID: conv.ID,
		Answer:         answer,
		Sources:        sources,
	}, nil
}

// resolveConversation loads the referenced conversation or starts a new one
// titled after the question.
func (c *Chat) resolveConversation(ctx context.Context, ownerID uint, conversationID, question string) (*models.Conversation, error) {
	if conversationID != "" {
		return c.conversations.GetConversation(ctx, conversationID, ownerID)
	}
	conv := &models.Conversation{
		OwnerID: ownerID,
		Title:   deriveTitle(question),
	}
	if err := c.conversations.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// buildMessages assembles the prompt: system instructions with the retrieved
// context, the trailing slice of persisted history, then the question.
func (c *Chat) buildMessages(hits []schema.SearchResult, history []models.Message, question string) []schema.ChatMessage {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nContext:\n")
	if len(hits) == 0 {
		sb.WriteString(noContextNote)
	} else {
		parts := make([]string, len(hits))
		for i, hit := range hits {
			parts[i] = "Document: " + hit.Content
		}
		sb.WriteString(strings.Join(parts, "\n\n"))
	}

	messages := []schema.ChatMessage{{Role: schema.RoleSystem, Content: sb.String()}}

	if len(history) > c.cfg.HistoryPromptLimit {
		history = history[len(history)-c.cfg.HistoryPromptLimit:]
	}
	for _, msg := range history {
		messages = append(messages, schema.ChatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	return append(messages, schema.ChatMessage{Role: schema.RoleUser, Content: question})
}

// deriveTitle truncates the question to a short conversation title.
func deriveTitle(question string) string {
	runes := []rune(question)
	if len(runes) <= titleMaxRunes {
		return question
	}
	return string(runes[:titleMaxRunes]) + "..."
}
