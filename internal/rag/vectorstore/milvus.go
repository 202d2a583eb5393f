// Package vectorstore adapts the Milvus client to the vector index used by
// the ingestion and chat pipelines.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"docintell/internal/database/milvus"
	"docintell/internal/rag/interfaces"
	"docintell/internal/rag/schema"
	"docintell/pkg/logger"
)

// searchEf controls the HNSW candidate list size at query time.
const searchEf = 64

// MilvusStore is an adapter over the raw Milvus client. It stores chunk text
// and filterable metadata in scalar columns next to the embedding so that
// retrieval never needs a second lookup.
type MilvusStore struct {
	log        *logger.Logger
	client     client.Client
	collection string
}

// NewMilvusStore creates a new MilvusStore over the shared Milvus connection.
func NewMilvusStore(mc *milvus.Client, log *logger.Logger) (*MilvusStore, error) {
	if mc == nil || mc.Client == nil {
		return nil, fmt.Errorf("milvus client is not initialized")
	}
	return &MilvusStore{
		log:        log,
		client:     mc.Client,
		collection: mc.Collection,
	}, nil
}

// Upsert writes the records into the collection, replacing any rows that
// share an id. All embeddings must have the same dimension.
func (s *MilvusStore) Upsert(ctx context.Context, records []schema.Record) error {
	if len(records) == 0 {
		return nil
	}

	dim := len(records[0].Embedding)
	ids := make([]string, len(records))
	embeddings := make([][]float32, len(records))
	contents := make([]string, len(records))
	documentIDs := make([]string, len(records))
	chunkIndexes := make([]int64, len(records))
	ownerIDs := make([]int64, len(records))

	for i, rec := range records {
		if len(rec.Embedding) != dim {
			return fmt.Errorf("embedding dimension mismatch at record %d: got %d, want %d", i, len(rec.Embedding), dim)
		}
		ids[i] = rec.ID
		embeddings[i] = rec.Embedding
		contents[i] = rec.Content

		if v, ok := rec.Metadata[schema.MetadataKeyDocumentID].(string); ok {
			documentIDs[i] = v
		}
		if v, ok := rec.Metadata[schema.MetadataKeyChunkIndex].(int); ok {
			chunkIndexes[i] = int64(v)
		}
		switch v := rec.Metadata[schema.MetadataKeyOwnerID].(type) {
		case uint:
			ownerIDs[i] = int64(v)
		case int64:
			ownerIDs[i] = v
		case int:
			ownerIDs[i] = int64(v)
		}
	}

	columns := []entity.Column{
		entity.NewColumnVarChar(milvus.FieldID, ids),
		entity.NewColumnFloatVector(milvus.FieldEmbedding, dim, embeddings),
		entity.NewColumnVarChar(milvus.FieldContent, contents),
		entity.NewColumnVarChar(milvus.FieldDocumentID, documentIDs),
		entity.NewColumnInt64(milvus.FieldChunkIndex, chunkIndexes),
		entity.NewColumnInt64(milvus.FieldOwnerID, ownerIDs),
	}

	s.log.WithField("count", len(records)).Debug("upserting records into Milvus collection " + s.collection)
	if _, err := s.client.Upsert(ctx, s.collection, "" /* default partition */, columns...); err != nil {
		return fmt.Errorf("failed to upsert into Milvus: %w", err)
	}
	return nil
}

// Query searches the collection for the topK nearest neighbours of the
// embedding, optionally restricted by a scalar filter. Results come back in
// ascending cosine distance order.
func (s *MilvusStore) Query(ctx context.Context, embedding []float32, topK int, filter schema.Metadata) ([]schema.SearchResult, error) {
	filterExpr, err := buildFilterExpr(filter)
	if err != nil {
		return nil, err
	}

	searchParams, err := entity.NewIndexHNSWSearchParam(searchEf)
	if err != nil {
		return nil, fmt.Errorf("failed to build search params: %w", err)
	}

	outputFields := []string{
		milvus.FieldContent,
		milvus.FieldDocumentID,
		milvus.FieldChunkIndex,
		milvus.FieldOwnerID,
	}

	searchResults, err := s.client.Search(
		ctx, s.collection, []string{}, filterExpr, outputFields,
		[]entity.Vector{entity.FloatVector(embedding)},
		milvus.FieldEmbedding, entity.COSINE, topK, searchParams,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search in Milvus: %w", err)
	}

	var results []schema.SearchResult
	for _, res := range searchResults {
		findColumn := func(name string) entity.Column {
			for _, field := range res.Fields {
				if field.Name() == name {
					return field
				}
			}
			return nil
		}

		contentCol, ok := findColumn(milvus.FieldContent).(*entity.ColumnVarChar)
		if !ok {
			s.log.Warn("search result is missing content field, skipping")
			continue
		}
		contentData := contentCol.Data()

		var documentIDData []string
		var chunkIndexData, ownerIDData []int64
		if col, ok := findColumn(milvus.FieldDocumentID).(*entity.ColumnVarChar); ok {
			documentIDData = col.Data()
		}
		if col, ok := findColumn(milvus.FieldChunkIndex).(*entity.ColumnInt64); ok {
			chunkIndexData = col.Data()
		}
		if col, ok := findColumn(milvus.FieldOwnerID).(*entity.ColumnInt64); ok {
			ownerIDData = col.Data()
		}

		for i := 0; i < res.ResultCount; i++ {
			meta := schema.Metadata{}
			if documentIDData != nil {
				meta[schema.MetadataKeyDocumentID] = documentIDData[i]
			}
			if chunkIndexData != nil {
				meta[schema.MetadataKeyChunkIndex] = int(chunkIndexData[i])
			}
			if ownerIDData != nil {
				meta[schema.MetadataKeyOwnerID] = ownerIDData[i]
			}

			// Milvus reports COSINE matches as similarity scores in
			// [-1, 1]; the pipelines expect distances that grow with
			// dissimilarity.
			results = append(results, schema.SearchResult{
				Content:  contentData[i],
				Metadata: meta,
				Distance: 1 - res.Scores[i],
			})
		}
	}

	return results, nil
}

// DeleteWhere removes every row matching the scalar filter. Deleting with a
// filter that matches nothing is not an error.
func (s *MilvusStore) DeleteWhere(ctx context.Context, filter schema.Metadata) error {
	filterExpr, err := buildFilterExpr(filter)
	if err != nil {
		return err
	}
	if filterExpr == "" {
		return fmt.Errorf("refusing to delete without a filter")
	}

	s.log.WithField("filter", filterExpr).Debug("deleting records from Milvus collection " + s.collection)
	if err := s.client.Delete(ctx, s.collection, "" /* default partition */, filterExpr); err != nil {
		return fmt.Errorf("failed to delete from Milvus: %w", err)
	}
	return nil
}

// compile-time check to ensure MilvusStore implements the VectorIndex interface
var _ interfaces.VectorIndex = (*MilvusStore)(nil)
