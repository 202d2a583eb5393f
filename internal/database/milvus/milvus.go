package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"docintell/internal/config"
)

// Field names of the chunk collection. The vector store package filters and
// outputs on these.
const (
	FieldID         = "id"
	FieldEmbedding  = "embedding"
	FieldContent    = "content"
	FieldDocumentID = "document_id"
	FieldChunkIndex = "chunk_index"
	FieldOwnerID    = "owner_id"
)

// Client wraps the raw Milvus SDK client together with the collection it
// operates on.
type Client struct {
	Client     client.Client
	Collection string
}

// Connect dials Milvus at the configured address.
func Connect(ctx context.Context, cfg *config.MilvusConfig) (*Client, error) {
	c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to Milvus: %w", err)
	}
	return &Client{Client: c, Collection: cfg.Collection}, nil
}

// EnsureCollection creates the chunk collection, its HNSW cosine index and
// loads it into memory. Existing collections are left untouched, so this is
// safe to run on every start.
func (c *Client) EnsureCollection(ctx context.Context, dim int) error {
	has, err := c.Client.HasCollection(ctx, c.Collection)
	if err != nil {
		return fmt.Errorf("cannot check collection %q: %w", c.Collection, err)
	}

	if !has {
		schema := entity.NewSchema().
			WithName(c.Collection).
			WithDescription("document chunk embeddings").
			WithField(entity.NewField().
				WithName(FieldID).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(128).
				WithIsPrimaryKey(true)).
			WithField(entity.NewField().
				WithName(FieldEmbedding).
				WithDataType(entity.FieldTypeFloatVector).
				WithDim(int64(dim))).
			WithField(entity.NewField().
				WithName(FieldContent).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(65535)).
			WithField(entity.NewField().
				WithName(FieldDocumentID).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(64)).
			WithField(entity.NewField().
				WithName(FieldChunkIndex).
				WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().
				WithName(FieldOwnerID).
				WithDataType(entity.FieldTypeInt64))

		if err := c.Client.CreateCollection(ctx, schema, 1); err != nil {
			return fmt.Errorf("cannot create collection %q: %w", c.Collection, err)
		}

		// Approximate nearest neighbour: HNSW trades exact recall for
		// query latency. COSINE keeps the distance semantics the
		// pipelines rely on.
		idx, err := entity.NewIndexHNSW(entity.COSINE, 8, 200)
		if err != nil {
			return fmt.Errorf("cannot build HNSW index definition: %w", err)
		}
		if err := c.Client.CreateIndex(ctx, c.Collection, FieldEmbedding, idx, false); err != nil {
			return fmt.Errorf("cannot create index on %q: %w", c.Collection, err)
		}
	}

	if err := c.Client.LoadCollection(ctx, c.Collection, false); err != nil {
		return fmt.Errorf("cannot load collection %q: %w", c.Collection, err)
	}
	return nil
}

// HealthCheck verifies connectivity by listing collections.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.Client == nil {
		return fmt.Errorf("milvus client is not initialized")
	}
	if _, err := c.Client.ListCollections(ctx); err != nil {
		return fmt.Errorf("milvus health check failed: %w", err)
	}
	return nil
}

// Close shuts the connection down.
func (c *Client) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
}
