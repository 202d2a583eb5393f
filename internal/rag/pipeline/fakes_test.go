package pipeline

import (
	"context"
	"fmt"

	"docintell/internal/errs"
	"docintell/internal/models"
	"docintell/internal/rag/schema"
)

// In-memory collaborators for pipeline tests.

type fakeDocumentStore struct {
	docs        map[string]*models.Document
	chunks      map[string][]models.DocumentChunk
	transitions []string
	nextID      int
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{
		docs:   make(map[string]*models.Document),
		chunks: make(map[string][]models.DocumentChunk),
	}
}

func (s *fakeDocumentStore) CreateDocument(_ context.Context, doc *models.Document) error {
	s.nextID++
	doc.ID = fmt.Sprintf("doc-%d", s.nextID)
	s.docs[doc.ID] = doc
	s.transitions = append(s.transitions, "created")
	return nil
}

func (s *fakeDocumentStore) MarkProcessing(_ context.Context, documentID string) error {
	doc, ok := s.docs[documentID]
	if !ok {
		return errs.ErrNotFound
	}
	doc.Status = models.StatusProcessing
	s.transitions = append(s.transitions, "processing")
	return nil
}

func (s *fakeDocumentStore) MarkCompleted(_ context.Context, documentID, content string, chunks []models.DocumentChunk) error {
	doc, ok := s.docs[documentID]
	if !ok {
		return errs.ErrNotFound
	}
	doc.Status = models.StatusCompleted
	doc.Content = content
	s.chunks[documentID] = chunks
	s.transitions = append(s.transitions, "completed")
	return nil
}

func (s *fakeDocumentStore) MarkFailed(_ context.Context, documentID, message string) error {
	doc, ok := s.docs[documentID]
	if !ok {
		return errs.ErrNotFound
	}
	doc.Status = models.StatusFailed
	doc.ErrorMessage = message
	s.transitions = append(s.transitions, "failed")
	return nil
}

func (s *fakeDocumentStore) GetDocument(_ context.Context, id string, ownerID uint) (*models.Document, error) {
	doc, ok := s.docs[id]
	if !ok || doc.OwnerID != ownerID {
		return nil, errs.ErrNotFound
	}
	doc.Chunks = s.chunks[id]
	return doc, nil
}

func (s *fakeDocumentStore) ListDocuments(_ context.Context, ownerID uint) ([]models.Document, error) {
	var docs []models.Document
	for _, doc := range s.docs {
		if doc.OwnerID == ownerID {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}

func (s *fakeDocumentStore) DeleteDocument(_ context.Context, id string, ownerID uint) error {
	doc, ok := s.docs[id]
	if !ok || doc.OwnerID != ownerID {
		return errs.ErrNotFound
	}
	delete(s.docs, id)
	delete(s.chunks, id)
	return nil
}

type fakeConversationStore struct {
	convs    map[string]*models.Conversation
	messages map[string][]models.Message
	nextID   int
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{
		convs:    make(map[string]*models.Conversation),
		messages: make(map[string][]models.Message),
	}
}

func (s *fakeConversationStore) CreateConversation(_ context.Context, conv *models.Conversation) error {
	s.nextID++
	conv.ID = fmt.Sprintf("conv-%d", s.nextID)
	s.convs[conv.ID] = conv
	return nil
}

func (s *fakeConversationStore) GetConversation(_ context.Context, id string, ownerID uint) (*models.Conversation, error) {
	conv, ok := s.convs[id]
	if !ok || conv.OwnerID != ownerID {
		return nil, errs.ErrNotFound
	}
	conv.Messages = s.messages[id]
	return conv, nil
}

func (s *fakeConversationStore) ListConversations(_ context.Context, ownerID uint) ([]models.Conversation, error) {
	var convs []models.Conversation
	for _, conv := range s.convs {
		if conv.OwnerID == ownerID {
			convs = append(convs, *conv)
		}
	}
	return convs, nil
}

func (s *fakeConversationStore) DeleteConversation(_ context.Context, id string, ownerID uint) error {
	conv, ok := s.convs[id]
	if !ok || conv.OwnerID != ownerID {
		return errs.ErrNotFound
	}
	delete(s.convs, id)
	delete(s.messages, id)
	return nil
}

func (s *fakeConversationStore) RecentMessages(_ context.Context, conversationID string, limit int) ([]models.Message, error) {
	msgs := s.messages[conversationID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (s *fakeConversationStore) AppendExchange(_ context.Context, conversationID string, userMsg, assistantMsg *models.Message) error {
	if _, ok := s.convs[conversationID]; !ok {
		return errs.ErrNotFound
	}
	s.messages[conversationID] = append(s.messages[conversationID], *userMsg, *assistantMsg)
	return nil
}

type fakeObjectStore struct {
	objects map[string][]byte
	putErr  error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (s *fakeObjectStore) Put(_ context.Context, documentID string, data []byte, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[documentID] = data
	return nil
}

func (s *fakeObjectStore) Remove(_ context.Context, documentID string) error {
	delete(s.objects, documentID)
	return nil
}

type fakeEmbedder struct {
	err   error
	calls [][]string
}

func (e *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.calls = append(e.calls, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 0.5}
	}
	return out, nil
}

type fakeVectorIndex struct {
	upserts [][]schema.Record
	deletes []schema.Metadata
	hits    []schema.SearchResult
	err     error
}

func (v *fakeVectorIndex) Upsert(_ context.Context, records []schema.Record) error {
	if v.err != nil {
		return v.err
	}
	v.upserts = append(v.upserts, records)
	return nil
}

func (v *fakeVectorIndex) Query(_ context.Context, _ []float32, topK int, _ schema.Metadata) ([]schema.SearchResult, error) {
	if v.err != nil {
		return nil, v.err
	}
	if len(v.hits) > topK {
		return v.hits[:topK], nil
	}
	return v.hits, nil
}

func (v *fakeVectorIndex) DeleteWhere(_ context.Context, filter schema.Metadata) error {
	v.deletes = append(v.deletes, filter)
	return nil
}

type fakeLLM struct {
	answer   string
	err      error
	messages []schema.ChatMessage
	opts     schema.GenerateOptions
}

func (l *fakeLLM) Chat(_ context.Context, messages []schema.ChatMessage, opts schema.GenerateOptions) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	l.messages = messages
	l.opts = opts
	return l.answer, nil
}

type runeCounter struct{}

func (runeCounter) Count(text string) int { return len([]rune(text)) }
