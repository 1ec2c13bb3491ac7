package vectordb

import "context"

// Index stores chunk records and answers similarity and filter queries.
//
// Implementations must be safe for concurrent use by independent document
// workers. Failures are reported as transient errors from the errors package.
type Index interface {
	// Upsert inserts chunks, replacing any existing records with the same id.
	Upsert(ctx context.Context, chunks []Chunk) error

	// Delete removes chunks by id. Unknown ids are ignored.
	Delete(ctx context.Context, ids ...string) error

	// Query returns up to topK chunks ranked by ascending distance to text.
	Query(ctx context.Context, text string, topK int, include Include) ([]Match, error)

	// GetByFilter returns every chunk whose metadata field equals value, unordered.
	GetByFilter(ctx context.Context, field, value string) ([]Chunk, error)

	// Count returns the total number of chunks in the index.
	Count() int
}
