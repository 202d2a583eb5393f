package schema

import "fmt"

// Metadata keys attached to every vector-index record. DocumentID and
// OwnerID drive filtered search and bulk deletion; the rest is provenance.
const (
	MetadataKeyDocumentID = "document_id"
	MetadataKeyChunkIndex = "chunk_index"
	MetadataKeyOwnerID    = "owner_id"
	MetadataKeyFileName   = "file_name"
)

// Metadata is a mapping from field name to a scalar value. Only string,
// integer and boolean values are meaningful to the vector index filter;
// anything else is rejected at query/delete time.
type Metadata map[string]interface{}

// Record is a vector-index entry: an embedding plus the text it represents
// and the metadata it can be filtered on.
type Record struct {
	ID        string
	Embedding []float32
	Content   string
	Metadata  Metadata
}

// SearchResult is one hit of a similarity query, ordered by ascending
// cosine distance (most similar first). Results are ephemeral and never
// persisted.
type SearchResult struct {
	Content  string
	Metadata Metadata
	Distance float32 // cosine distance in [0, 2]
}

// Similarity converts the cosine distance into a similarity score in [0, 1]
// for typical near-neighbour hits.
func (r SearchResult) Similarity() float32 {
	return 1 - r.Distance
}

// ChunkVectorID derives the vector-index id of a chunk. The format is
// stable: it is used both on upsert and when deleting all of a document's
// vectors, and re-ingesting the same document overwrites the same ids.
func ChunkVectorID(documentID string, chunkIndex int) string {
	return fmt.Sprintf("%s_%d", documentID, chunkIndex)
}

// Speaker roles of a chat exchange.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn handed to the language model.
type ChatMessage struct {
	Role    string
	Content string
}

// GenerateOptions bounds a single language-model invocation.
type GenerateOptions struct {
	Temperature float32
	MaxTokens   int
}
