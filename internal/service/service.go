// Package service exposes the application's operations to the HTTP layer,
// coordinating the pipelines and the three stores.
package service

import (
	"context"

	"docintell/internal/models"
	"docintell/internal/rag/interfaces"
	"docintell/internal/rag/pipeline"
	"docintell/internal/rag/schema"
	"docintell/pkg/logger"
)

// Service is the application facade. Every operation is scoped to the
// calling owner; cross-owner access surfaces as not-found.
type Service struct {
	log           *logger.Logger
	ingestion     *pipeline.Ingestion
	chat          *pipeline.Chat
	documents     interfaces.DocumentStore
	conversations interfaces.ConversationStore
	objects       interfaces.ObjectStore
	index         interfaces.VectorIndex
}

// New wires the service.
func New(
	ingestion *pipeline.Ingestion,
	chat *pipeline.Chat,
	documents interfaces.DocumentStore,
	conversations interfaces.ConversationStore,
	objects interfaces.ObjectStore,
	index interfaces.VectorIndex,
	log *logger.Logger,
) *Service {
	return &Service{
		log:           log,
		ingestion:     ingestion,
		chat:          chat,
		documents:     documents,
		conversations: conversations,
		objects:       objects,
		index:         index,
	}
}

// UploadDocument ingests an uploaded file end to end and returns the
// document in its terminal state.
func (s *Service) UploadDocument(ctx context.Context, in pipeline.UploadInput) (*models.Document, error) {
	return s.ingestion.Ingest(ctx, in)
}

// GetDocument returns one of the owner's documents with its chunks.
func (s *Service) GetDocument(ctx context.Context, id string, ownerID uint) (*models.Document, error) {
	return s.documents.GetDocument(ctx, id, ownerID)
}

// ListDocuments returns the owner's documents, newest first.
func (s *Service) ListDocuments(ctx context.Context, ownerID uint) ([]models.Document, error) {
	return s.documents.ListDocuments(ctx, ownerID)
}

// DeleteDocument removes a document everywhere: its vectors, its archived
// raw bytes, then the row with its chunks. The vector and object deletions
// run first so a row never outlives its index entries; both are idempotent,
// so a partial delete can simply be retried.
func (s *Service) DeleteDocument(ctx context.Context, id string, ownerID uint) error {
	// Ownership check up front; the index filter below does not know owners
	// of historic records.
	if _, err := s.documents.GetDocument(ctx, id, ownerID); err != nil {
		return err
	}

	if err := s.index.DeleteWhere(ctx, schema.Metadata{
		schema.MetadataKeyDocumentID: id,
	}); err != nil {
		return err
	}
	if err := s.objects.Remove(ctx, id); err != nil {
		s.log.WithError(err).WithField("document_id", id).Warn("failed to remove archived object")
	}
	return s.documents.DeleteDocument(ctx, id, ownerID)
}

// Ask runs one grounded question-answer turn.
func (s *Service) Ask(ctx context.Context, ownerID uint, conversationID, question string) (*pipeline.ChatResult, error) {
	return s.chat.Ask(ctx, ownerID, conversationID, question)
}

// GetConversation returns one of the owner's conversations with its full
// message log.
func (s *Service) GetConversation(ctx context.Context, id string, ownerID uint) (*models.Conversation, error) {
	return s.conversations.GetConversation(ctx, id, ownerID)
}

// ListConversations returns the owner's conversations, most recently active
// first.
func (s *Service) ListConversations(ctx context.Context, ownerID uint) ([]models.Conversation, error) {
	return s.conversations.ListConversations(ctx, ownerID)
}

// DeleteConversation removes one of the owner's conversations and its
// messages.
func (s *Service) DeleteConversation(ctx context.Context, id string, ownerID uint) error {
	return s.conversations.DeleteConversation(ctx, id, ownerID)
}
