package models

import (
	"time"

	"gorm.io/datatypes"
)

// DocumentStatus tracks a document through its ingestion lifecycle.
// Transitions only move forward: pending -> processing -> completed|failed.
type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

// Document is an uploaded file together with its extracted text. Content is
// only populated once ingestion reaches the completed state.
type Document struct {
	ID       string `gorm:"type:char(36);primaryKey"`
	Filename string `gorm:"size:512;not null"`
	FileType string `gorm:"size:128;not null"` // declared MIME type
	FileSize int64  `gorm:"not null"`
	Content  string `gorm:"type:longtext"`

	Metadata datatypes.JSONMap

	OwnerID uint `gorm:"index;not null"`

	Status       DocumentStatus `gorm:"type:varchar(20);default:'pending';not null"`
	ErrorMessage string         `gorm:"type:text"`

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ProcessedAt *time.Time

	Chunks []DocumentChunk `gorm:"constraint:OnDelete:CASCADE"`
}

// DocumentChunk is one bounded segment of a document's extracted text.
// ChunkIndex is zero-based and contiguous per document; EmbeddingID is the
// id of the matching vector-index record ("{documentID}_{chunkIndex}").
type DocumentChunk struct {
	ID          string `gorm:"type:char(36);primaryKey"`
	DocumentID  string `gorm:"type:char(36);index;not null"`
	ChunkIndex  int    `gorm:"not null"`
	Content     string `gorm:"type:text;not null"`
	EmbeddingID string `gorm:"size:128"`
	Tokens      int

	CreatedAt time.Time
}

func (Document) TableName() string {
	return "documents"
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
