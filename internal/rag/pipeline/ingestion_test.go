package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docintell/internal/config"
	"docintell/internal/errs"
	"docintell/internal/models"
	"docintell/internal/rag/extract"
	"docintell/internal/rag/schema"
	"docintell/internal/rag/splitter"
	"docintell/pkg/logger"
)

func newTestRAGConfig() *config.RAGConfig {
	return &config.RAGConfig{
		ChunkSize:           1000,
		ChunkOverlap:        200,
		MaxContextChunks:    5,
		HistoryPersistLimit: 20,
		HistoryPromptLimit:  10,
		AllowedExtensions:   config.DefaultAllowedExtensions(),
		MaxUploadSize:       1 << 20,
	}
}

type ingestionHarness struct {
	pipeline  *Ingestion
	documents *fakeDocumentStore
	objects   *fakeObjectStore
	embedder  *fakeEmbedder
	index     *fakeVectorIndex
}

func newIngestionHarness(cfg *config.RAGConfig) *ingestionHarness {
	h := &ingestionHarness{
		documents: newFakeDocumentStore(),
		objects:   newFakeObjectStore(),
		embedder:  &fakeEmbedder{},
		index:     &fakeVectorIndex{},
	}
	h.pipeline = NewIngestion(
		cfg, h.documents, h.objects, extract.NewService(),
		splitter.NewRecursiveSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		h.embedder, h.index, runeCounter{},
		logger.New("test"),
	)
	return h
}

func TestIngest_RejectsMissingFilename(t *testing.T) {
	h := newIngestionHarness(newTestRAGConfig())

	_, err := h.pipeline.Ingest(context.Background(), UploadInput{
		Filename: "  ",
		Data:     []byte("content"),
		OwnerID:  1,
	})
	if !errs.IsValidation(err) {
		t.Fatalf("Ingest() error = %v, want validation error", err)
	}
	if len(h.documents.docs) != 0 {
		t.Error("document row was created before validation passed")
	}
}

func TestIngest_RejectsOversizeUpload(t *testing.T) {
	cfg := newTestRAGConfig()
	cfg.MaxUploadSize = 4
	h := newIngestionHarness(cfg)

	_, err := h.pipeline.Ingest(context.Background(), UploadInput{
		Filename: "big.txt",
		Data:     []byte("way too large"),
		OwnerID:  1,
	})
	if !errs.IsValidation(err) {
		t.Fatalf("Ingest() error = %v, want validation error", err)
	}
}

func TestIngest_RejectsDisallowedExtension(t *testing.T) {
	h := newIngestionHarness(newTestRAGConfig())

	_, err := h.pipeline.Ingest(context.Background(), UploadInput{
		Filename: "tool.exe",
		Data:     []byte("MZ"),
		OwnerID:  1,
	})
	if !errs.IsValidation(err) {
		t.Fatalf("Ingest() error = %v, want validation error", err)
	}
	if len(h.documents.docs) != 0 {
		t.Error("document row was created for a disallowed extension")
	}
}

func TestIngest_TextDocumentCompletes(t *testing.T) {
	h := newIngestionHarness(newTestRAGConfig())
	content := "notes about the quarterly report"

	doc, err := h.pipeline.Ingest(context.Background(), UploadInput{
		Filename:    "notes.txt",
		ContentType: "text/plain",
		Data:        []byte(content),
		OwnerID:     7,
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if doc.Status != models.StatusCompleted {
		t.Fatalf("status = %q, want %q (error: %s)", doc.Status, models.StatusCompleted, doc.ErrorMessage)
	}
	if doc.Content != content {
		t.Errorf("content = %q, want %q", doc.Content, content)
	}
	if len(doc.Chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(doc.Chunks))
	}

	chunk := doc.Chunks[0]
	wantID := schema.ChunkVectorID(doc.ID, 0)
	if chunk.EmbeddingID != wantID {
		t.Errorf("embedding id = %q, want %q", chunk.EmbeddingID, wantID)
	}
	if chunk.ChunkIndex != 0 {
		t.Errorf("chunk index = %d, want 0", chunk.ChunkIndex)
	}
	if chunk.Tokens != len([]rune(content)) {
		t.Errorf("tokens = %d, want %d", chunk.Tokens, len([]rune(content)))
	}

	if len(h.index.upserts) != 1 || len(h.index.upserts[0]) != 1 {
		t.Fatalf("index upserts = %v, want one batch of one record", h.index.upserts)
	}
	rec := h.index.upserts[0][0]
	if rec.ID != wantID {
		t.Errorf("record id = %q, want %q", rec.ID, wantID)
	}
	if rec.Metadata[schema.MetadataKeyOwnerID] != uint(7) {
		t.Errorf("record owner = %v, want 7", rec.Metadata[schema.MetadataKeyOwnerID])
	}
	if rec.Metadata[schema.MetadataKeyDocumentID] != doc.ID {
		t.Errorf("record document id = %v, want %q", rec.Metadata[schema.MetadataKeyDocumentID], doc.ID)
	}

	if _, ok := h.objects.objects[doc.ID]; !ok {
		t.Error("raw bytes were not archived in the object store")
	}

	want := []string{"created", "processing", "completed"}
	if strings.Join(h.documents.transitions, ",") != strings.Join(want, ",") {
		t.Errorf("transitions = %v, want %v", h.documents.transitions, want)
	}
}

func TestIngest_EmptyDocumentCompletesWithoutChunks(t *testing.T) {
	h := newIngestionHarness(newTestRAGConfig())

	doc, err := h.pipeline.Ingest(context.Background(), UploadInput{
		Filename: "blank.txt",
		Data:     []byte("   \n  "),
		OwnerID:  1,
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if doc.Status != models.StatusCompleted {
		t.Fatalf("status = %q, want %q", doc.Status, models.StatusCompleted)
	}
	if len(doc.Chunks) != 0 {
		t.Errorf("got %d chunks, want 0", len(doc.Chunks))
	}
	if len(h.index.upserts) != 0 {
		t.Error("vectors were upserted for an empty document")
	}
}

func TestIngest_ExtractionFailureMarksFailed(t *testing.T) {
	h := newIngestionHarness(newTestRAGConfig())

	doc, err := h.pipeline.Ingest(context.Background(), UploadInput{
		Filename: "broken.pdf",
		Data:     []byte("definitely not a pdf"),
		OwnerID:  1,
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v, want nil with failed document", err)
	}
	if doc.Status != models.StatusFailed {
		t.Fatalf("status = %q, want %q", doc.Status, models.StatusFailed)
	}
	if doc.ErrorMessage == "" {
		t.Error("failure message is empty")
	}
	if len(h.index.upserts) != 0 {
		t.Error("vectors were upserted for a failed document")
	}
}

func TestIngest_EmbeddingFailureMarksFailed(t *testing.T) {
	h := newIngestionHarness(newTestRAGConfig())
	h.embedder.err = errors.New("model unavailable")

	doc, err := h.pipeline.Ingest(context.Background(), UploadInput{
		Filename: "notes.txt",
		Data:     []byte("some text to embed"),
		OwnerID:  1,
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v, want nil with failed document", err)
	}
	if doc.Status != models.StatusFailed {
		t.Fatalf("status = %q, want %q", doc.Status, models.StatusFailed)
	}
	if !strings.Contains(doc.ErrorMessage, "embed") {
		t.Errorf("failure message %q does not name the embed stage", doc.ErrorMessage)
	}
}

func TestIngest_ObjectStoreFailureMarksFailed(t *testing.T) {
	h := newIngestionHarness(newTestRAGConfig())
	h.objects.putErr = errors.New("bucket gone")

	doc, err := h.pipeline.Ingest(context.Background(), UploadInput{
		Filename: "notes.txt",
		Data:     []byte("text"),
		OwnerID:  1,
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v, want nil with failed document", err)
	}
	if doc.Status != models.StatusFailed {
		t.Fatalf("status = %q, want %q", doc.Status, models.StatusFailed)
	}
}
