// Package store implements the durable MySQL-backed stores for documents,
// chunks and conversations on top of GORM.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"docintell/internal/errs"
	"docintell/internal/models"
	"docintell/internal/rag/interfaces"
)

// DocumentStore persists documents and their chunks.
type DocumentStore struct {
	db *gorm.DB
}

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// CreateDocument inserts the document. A missing id is generated; the status
// starts out pending unless already set.
func (s *DocumentStore) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Status == "" {
		doc.Status = models.StatusPending
	}
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// MarkProcessing flips the document into the processing state.
func (s *DocumentStore) MarkProcessing(ctx context.Context, documentID string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ?", documentID).
		Update("status", models.StatusProcessing)
	if res.Error != nil {
		return fmt.Errorf("failed to mark document processing: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// MarkCompleted stores the extracted content, replaces the chunk rows and
// flips the status to completed, all in one transaction.
func (s *DocumentStore) MarkCompleted(ctx context.Context, documentID, content string, chunks []models.DocumentChunk) error {
	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Document{}).
			Where("id = ?", documentID).
			Updates(map[string]interface{}{
				"status":        models.StatusCompleted,
				"content":       content,
				"error_message": "",
				"processed_at":  now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to mark document completed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.ErrNotFound
		}

		if err := tx.Where("document_id = ?", documentID).
			Delete(&models.DocumentChunk{}).Error; err != nil {
			return fmt.Errorf("failed to clear old chunks: %w", err)
		}

		for i := range chunks {
			chunks[i].DocumentID = documentID
			if chunks[i].ID == "" {
				chunks[i].ID = uuid.NewString()
			}
		}
		if len(chunks) > 0 {
			if err := tx.Create(&chunks).Error; err != nil {
				return fmt.Errorf("failed to create chunks: %w", err)
			}
		}
		return nil
	})
}

// MarkFailed records the failure message and flips the status to failed.
func (s *DocumentStore) MarkFailed(ctx context.Context, documentID, message string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ?", documentID).
		Updates(map[string]interface{}{
			"status":        models.StatusFailed,
			"error_message": message,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark document failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// GetDocument loads one of the owner's documents with its chunks in index
// order.
func (s *DocumentStore) GetDocument(ctx context.Context, id string, ownerID uint) (*models.Document, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).
		Preload("Chunks", func(db *gorm.DB) *gorm.DB {
			return db.Order("chunk_index ASC")
		}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns the owner's documents, newest first, without chunks.
func (s *DocumentStore) ListDocuments(ctx context.Context, ownerID uint) ([]models.Document, error) {
	var docs []models.Document
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes one of the owner's documents and its chunk rows.
func (s *DocumentStore) DeleteDocument(ctx context.Context, id string, ownerID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND owner_id = ?", id, ownerID).
			Delete(&models.Document{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete document: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.ErrNotFound
		}
		if err := tx.Where("document_id = ?", id).
			Delete(&models.DocumentChunk{}).Error; err != nil {
			return fmt.Errorf("failed to delete chunks: %w", err)
		}
		return nil
	})
}

// compile-time check to ensure DocumentStore implements the interface
var _ interfaces.DocumentStore = (*DocumentStore)(nil)
