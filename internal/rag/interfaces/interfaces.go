package interfaces

import (
	"context"

	"docintell/internal/models"
	"docintell/internal/rag/schema"
)

// Extractor converts raw file bytes of a declared type into plain text.
// Implementations are pure transforms with no side effects.
type Extractor interface {
	Extract(ctx context.Context, data []byte, extension string) (string, error)
}

// Splitter cuts plain text into bounded, overlapping segments.
type Splitter interface {
	Split(text string) []string
}

// EmbeddingModel converts a batch of texts into fixed-dimension vectors,
// one per input, order preserved. A single text is a batch of size one.
type EmbeddingModel interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex stores (vector, text, metadata) triples keyed by an opaque id
// and answers filtered approximate nearest-neighbour queries.
type VectorIndex interface {
	Upsert(ctx context.Context, records []schema.Record) error
	Query(ctx context.Context, embedding []float32, topK int, filter schema.Metadata) ([]schema.SearchResult, error)
	DeleteWhere(ctx context.Context, filter schema.Metadata) error
}

// LLM is a chat-completion language model.
type LLM interface {
	Chat(ctx context.Context, messages []schema.ChatMessage, opts schema.GenerateOptions) (string, error)
}

// DocumentStore is the durable record of documents and their chunks.
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	MarkProcessing(ctx context.Context, documentID string) error
	// MarkCompleted persists the extracted content and the chunk rows and
	// flips the status to completed in one transaction.
	MarkCompleted(ctx context.Context, documentID, content string, chunks []models.DocumentChunk) error
	MarkFailed(ctx context.Context, documentID, message string) error
	GetDocument(ctx context.Context, id string, ownerID uint) (*models.Document, error)
	ListDocuments(ctx context.Context, ownerID uint) ([]models.Document, error)
	DeleteDocument(ctx context.Context, id string, ownerID uint) error
}

// ConversationStore is the durable ordered log of chat turns.
type ConversationStore interface {
	CreateConversation(ctx context.Context, conv *models.Conversation) error
	GetConversation(ctx context.Context, id string, ownerID uint) (*models.Conversation, error)
	ListConversations(ctx context.Context, ownerID uint) ([]models.Conversation, error)
	DeleteConversation(ctx context.Context, id string, ownerID uint) error
	// RecentMessages returns up to limit of the newest messages, in
	// chronological order.
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error)
	// AppendExchange persists the user message and the assistant reply in
	// that order, atomically.
	AppendExchange(ctx context.Context, conversationID string, userMsg, assistantMsg *models.Message) error
}

// ObjectStore keeps the raw uploaded bytes of a document.
type ObjectStore interface {
	Put(ctx context.Context, documentID string, data []byte, contentType string) error
	Remove(ctx context.Context, documentID string) error
}
