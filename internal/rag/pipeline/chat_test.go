package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"docintell/internal/config"
	"docintell/internal/errs"
	"docintell/internal/models"
	"docintell/internal/rag/schema"
	"docintell/pkg/logger"
)

type chatHarness struct {
	pipeline      *Chat
	conversations *fakeConversationStore
	embedder      *fakeEmbedder
	index         *fakeVectorIndex
	llm           *fakeLLM
}

func newChatHarness(cfg *config.RAGConfig) *chatHarness {
	h := &chatHarness{
		conversations: newFakeConversationStore(),
		embedder:      &fakeEmbedder{},
		index:         &fakeVectorIndex{},
		llm:           &fakeLLM{answer: "the report says revenue grew"},
	}
	h.pipeline = NewChat(cfg, h.conversations, h.embedder, h.index, h.llm, logger.New("test"))
	return h
}

func TestAsk_RejectsEmptyQuestion(t *testing.T) {
	h := newChatHarness(newTestRAGConfig())

	_, err := h.pipeline.Ask(context.Background(), 1, "", "   ")
	if !errs.IsValidation(err) {
		t.Fatalf("Ask() error = %v, want validation error", err)
	}
}

func TestAsk_StartsConversationAndGroundsAnswer(t *testing.T) {
	h := newChatHarness(newTestRAGConfig())
	h.index.hits = []schema.SearchResult{
		{Content: "revenue grew 12% in Q3", Distance: 0.2},
		{Content: "costs were flat year over year", Distance: 0.4},
	}

	result, err := h.pipeline.Ask(context.Background(), 1, "", "How did revenue develop?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if result.ConversationID == "" {
		t.Fatal("no conversation was created")
	}
	conv := h.conversations.convs[result.ConversationID]
	if conv == nil {
		t.Fatal("conversation not persisted")
	}
	if conv.Title != "How did revenue develop?" {
		t.Errorf("title = %q, want the question", conv.Title)
	}

	if result.Answer != "the report says revenue grew" {
		t.Errorf("answer = %q", result.Answer)
	}
	if len(result.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(result.Sources))
	}
	if got, want := result.Sources[0].Similarity, float32(0.8); got != want {
		t.Errorf("similarity = %v, want %v", got, want)
	}

	if len(h.llm.messages) < 2 {
		t.Fatalf("got %d prompt messages, want system + question", len(h.llm.messages))
	}
	system := h.llm.messages[0]
	if system.Role != schema.RoleSystem {
		t.Errorf("first message role = %q, want system", system.Role)
	}
	if !strings.Contains(system.Content, "Document: revenue grew 12% in Q3") {
		t.Error("system prompt is missing the retrieved context")
	}
	last := h.llm.messages[len(h.llm.messages)-1]
	if last.Role != schema.RoleUser || last.Content != "How did revenue develop?" {
		t.Errorf("last message = %+v, want the user question", last)
	}

	if h.llm.opts.Temperature != 0.7 || h.llm.opts.MaxTokens != 1000 {
		t.Errorf("generate options = %+v", h.llm.opts)
	}

	msgs := h.conversations.messages[result.ConversationID]
	if len(msgs) != 2 {
		t.Fatalf("got %d persisted messages, want 2", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[1].Role != models.RoleAssistant {
		t.Errorf("persisted roles = %q, %q", msgs[0].Role, msgs[1].Role)
	}
}

func TestAsk_TruncatesLongTitle(t *testing.T) {
	h := newChatHarness(newTestRAGConfig())
	question := strings.Repeat("why ", 20) // 80 runes

	result, err := h.pipeline.Ask(context.Background(), 1, "", question)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	title := h.conversations.convs[result.ConversationID].Title
	if len([]rune(title)) != titleMaxRunes+3 {
		t.Errorf("title length = %d runes, want %d", len([]rune(title)), titleMaxRunes+3)
	}
	if !strings.HasSuffix(title, "...") {
		t.Errorf("title %q does not end with an ellipsis", title)
	}
}

func TestAsk_NotesMissingContext(t *testing.T) {
	h := newChatHarness(newTestRAGConfig())

	_, err := h.pipeline.Ask(context.Background(), 1, "", "anything indexed?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !strings.Contains(h.llm.messages[0].Content, "could not find relevant information") {
		t.Error("system prompt does not flag the empty context")
	}
}

func TestAsk_ForwardsBoundedHistory(t *testing.T) {
	cfg := newTestRAGConfig()
	cfg.HistoryPromptLimit = 2
	h := newChatHarness(cfg)

	conv := &models.Conversation{OwnerID: 1, Title: "old chat"}
	if err := h.conversations.CreateConversation(context.Background(), conv); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		err := h.conversations.AppendExchange(context.Background(), conv.ID,
			&models.Message{Role: models.RoleUser, Content: fmt.Sprintf("q%d", i)},
			&models.Message{Role: models.RoleAssistant, Content: fmt.Sprintf("a%d", i)},
		)
		if err != nil {
			t.Fatal(err)
		}
	}

	result, err := h.pipeline.Ask(context.Background(), 1, conv.ID, "follow-up")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if result.ConversationID != conv.ID {
		t.Errorf("conversation id = %q, want %q", result.ConversationID, conv.ID)
	}

	// system + 2 history + question
	if len(h.llm.messages) != 4 {
		t.Fatalf("got %d prompt messages, want 4", len(h.llm.messages))
	}
	if h.llm.messages[1].Content != "q2" || h.llm.messages[2].Content != "a2" {
		t.Errorf("forwarded history = %q, %q, want the newest exchange",
			h.llm.messages[1].Content, h.llm.messages[2].Content)
	}
}

func TestAsk_ForeignConversationIsNotFound(t *testing.T) {
	h := newChatHarness(newTestRAGConfig())
	conv := &models.Conversation{OwnerID: 2, Title: "someone else's"}
	if err := h.conversations.CreateConversation(context.Background(), conv); err != nil {
		t.Fatal(err)
	}

	_, err := h.pipeline.Ask(context.Background(), 1, conv.ID, "question")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("Ask() error = %v, want not found", err)
	}
}

func TestAsk_GenerationFailureLeavesNoHistory(t *testing.T) {
	h := newChatHarness(newTestRAGConfig())
	h.llm.err = errors.New("model overloaded")

	_, err := h.pipeline.Ask(context.Background(), 1, "", "question")
	if err == nil {
		t.Fatal("Ask() error = nil, want upstream error")
	}
	for id, msgs := range h.conversations.messages {
		if len(msgs) != 0 {
			t.Errorf("conversation %s has %d messages after a failed turn", id, len(msgs))
		}
	}
}
