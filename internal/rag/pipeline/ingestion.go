// Package pipeline implements the two core flows: ingesting an uploaded
// document into the stores and answering a question over the indexed corpus.
package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	"gorm.io/datatypes"

	"docintell/internal/config"
	"docintell/internal/errs"
	"docintell/internal/models"
	"docintell/internal/rag/interfaces"
	"docintell/internal/rag/schema"
	"docintell/pkg/logger"
)

// TokenCounter reports how many model tokens a piece of text costs.
type TokenCounter interface {
	Count(text string) int
}

// UploadInput is one file handed to the ingestion pipeline.
type UploadInput struct {
	Filename    string
	ContentType string
	Data        []byte
	OwnerID     uint
}

// Ingestion runs uploads through extract, split, embed and index, recording
// every step in the document row's status.
type Ingestion struct {
	log       *logger.Logger
	cfg       *config.RAGConfig
	documents interfaces.DocumentStore
	objects   interfaces.ObjectStore
	extractor interfaces.Extractor
	splitter  interfaces.Splitter
	embedder  interfaces.EmbeddingModel
	index     interfaces.VectorIndex
	tokens    TokenCounter
}

// NewIngestion wires the ingestion pipeline.
func NewIngestion(
	cfg *config.RAGConfig,
	documents interfaces.DocumentStore,
	objects interfaces.ObjectStore,
	extractor interfaces.Extractor,
	split interfaces.Splitter,
	embedder interfaces.EmbeddingModel,
	index interfaces.VectorIndex,
	tokens TokenCounter,
	log *logger.Logger,
) *Ingestion {
	return &Ingestion{
		log:       log,
		cfg:       cfg,
		documents: documents,
		objects:   objects,
		extractor: extractor,
		splitter:  split,
		embedder:  embedder,
		index:     index,
		tokens:    tokens,
	}
}

// Ingest validates and persists the upload, then processes it synchronously.
// Validation faults are returned before any row exists; once the document
// row is created, processing failures are recorded on the row and the
// document comes back in its terminal state instead of an error.
func (p *Ingestion) Ingest(ctx context.Context, in UploadInput) (*models.Document, error) {
	if strings.TrimSpace(in.Filename) == "" {
		return nil, errs.Validation("filename is required")
	}
	if int64(len(in.Data)) > p.cfg.MaxUploadSize {
		return nil, errs.Validation("file exceeds maximum size of %d bytes", p.cfg.MaxUploadSize)
	}
	ext := strings.ToLower(filepath.Ext(in.Filename))
	if !p.extensionAllowed(ext) {
		return nil, errs.Validation("unsupported file type: %s", ext)
	}

	doc := &models.Document{
		Filename: in.Filename,
		FileType: in.ContentType,
		FileSize: int64(len(in.Data)),
		OwnerID:  in.OwnerID,
		Status:   models.StatusPending,
		Metadata: datatypes.JSONMap{
			schema.MetadataKeyFileName: in.Filename,
		},
	}
	if err := p.documents.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	log := p.log.WithField("document_id", doc.ID)
	log.Info("ingesting document " + in.Filename)

	if err := p.documents.MarkProcessing(ctx, doc.ID); err != nil {
		return nil, err
	}
	doc.Status = models.StatusProcessing

	if err := p.process(ctx, doc, in, ext); err != nil {
		log.WithError(err).Warn("document ingestion failed")
		if markErr := p.documents.MarkFailed(ctx, doc.ID, err.Error()); markErr != nil {
			return nil, markErr
		}
		doc.Status = models.StatusFailed
		doc.ErrorMessage = err.Error()
		return doc, nil
	}

	return p.documents.GetDocument(ctx, doc.ID, in.OwnerID)
}

// process runs the fallible stages. Any returned error becomes the
// document's failure message.
func (p *Ingestion) process(ctx context.Context, doc *models.Document, in UploadInput, ext string) error {
	if err := p.objects.Put(ctx, doc.ID, in.Data, in.ContentType); err != nil {
		return errs.Upstream("object store put", err)
	}

	content, err := p.extractor.Extract(ctx, in.Data, ext)
	if err != nil {
		return err
	}

	pieces := p.splitter.Split(content)
	if len(pieces) == 0 {
		// Nothing to index; the document still completes with its
		// extracted (possibly empty) content.
		return p.documents.MarkCompleted(ctx, doc.ID, content, nil)
	}

	embeddings, err := p.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		return errs.Upstream("embed", err)
	}

	records := make([]schema.Record, len(pieces))
	chunks := make([]models.DocumentChunk, len(pieces))
	for i, text := range pieces {
		id := schema.ChunkVectorID(doc.ID, i)
		records[i] = schema.Record{
			ID:        id,
			Embedding: embeddings[i],
			Content:   text,
			Metadata: schema.Metadata{
				schema.MetadataKeyDocumentID: doc.ID,
				schema.MetadataKeyChunkIndex: i,
				schema.MetadataKeyOwnerID:    doc.OwnerID,
				schema.MetadataKeyFileName:   doc.Filename,
			},
		}
		chunks[i] = models.DocumentChunk{
			DocumentID:  doc.ID,
			ChunkIndex:  i,
			Content:     text,
			EmbeddingID: id,
			Tokens:      p.tokens.Count(text),
		}
	}

	// Vectors go in before the status flips so a completed document never
	// has missing vectors. A failure after the upsert leaves orphans that
	// re-ingestion overwrites by id.
	if err := p.index.Upsert(ctx, records); err != nil {
		return errs.Upstream("vector upsert", err)
	}

	return p.documents.MarkCompleted(ctx, doc.ID, content, chunks)
}

func (p *Ingestion) extensionAllowed(ext string) bool {
	for _, allowed := range p.cfg.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
