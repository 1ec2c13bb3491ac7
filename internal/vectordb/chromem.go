package vectordb

import (
	"context"
	"fmt"
	"os"
	"runtime"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/vaultsearch/internal/embeddings"
	vserrors "github.com/ziadkadry99/vaultsearch/internal/errors"
)

// CollectionName is the chromem collection holding note chunks.
const CollectionName = "note_chunks"

// countRetries bounds how often a count-sized query is retried when the
// collection shrinks between Count and Query.
const countRetries = 3

// ChromemStore implements Index using chromem-go.
type ChromemStore struct {
	db          *chromem.DB
	collection  *chromem.Collection
	embedFunc   chromem.EmbeddingFunc
	concurrency int
}

// NewChromemStore creates a new in-memory ChromemStore.
func NewChromemStore(embedder embeddings.Embedder) (*ChromemStore, error) {
	return newChromemStore(chromem.NewDB(), embedder)
}

// OpenChromemStore opens (or creates) a persistent ChromemStore rooted at dir.
// Every write is flushed to disk by chromem, so a restarted process sees the
// index exactly as the last successful Upsert or Delete left it.
func OpenChromemStore(dir string, embedder embeddings.Embedder) (*ChromemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, vserrors.Fatal("vectordb.Open", dir, err)
	}
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, vserrors.Fatal("vectordb.Open", dir, err)
	}
	return newChromemStore(db, embedder)
}

func newChromemStore(db *chromem.DB, embedder embeddings.Embedder) (*ChromemStore, error) {
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(CollectionName, map[string]string{"space": "cosine"}, ef)
	if err != nil {
		return nil, vserrors.Fatal("vectordb.Open", CollectionName, fmt.Errorf("create collection: %w", err))
	}

	return &ChromemStore{
		db:          db,
		collection:  col,
		embedFunc:   ef,
		concurrency: min(runtime.NumCPU(), 4),
	}, nil
}

func (s *ChromemStore) Upsert(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:       c.ID,
			Content:  c.Text,
			Metadata: metadataToMap(c.Metadata),
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, s.concurrency); err != nil {
		return vserrors.Transient("vectordb.Upsert", chunks[0].Metadata.DocumentID, err)
	}
	return nil
}

func (s *ChromemStore) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.collection.Delete(ctx, nil, nil, ids...); err != nil {
		return vserrors.Transient("vectordb.Delete", ids[0], err)
	}
	return nil
}

func (s *ChromemStore) Query(ctx context.Context, text string, topK int, include Include) ([]Match, error) {
	if topK <= 0 {
		return nil, vserrors.Invalid("vectordb.Query", "topK must be positive, got %d", topK)
	}
	// chromem rejects an empty query text; there is nothing to rank against.
	if text == "" {
		return nil, nil
	}

	results, err := s.queryClamped(ctx, text, topK, nil)
	if err != nil {
		return nil, vserrors.Transient("vectordb.Query", "", err)
	}

	matches := make([]Match, len(results))
	for i, r := range results {
		m := Match{Chunk: Chunk{ID: r.ID}}
		if include.Has(IncludeDocuments) {
			m.Text = r.Content
		}
		if include.Has(IncludeMetadatas) {
			m.Metadata = mapToMetadata(r.Metadata)
		}
		if include.Has(IncludeDistances) {
			m.Distance = distance(r.Similarity)
		}
		matches[i] = m
	}
	return matches, nil
}

func (s *ChromemStore) GetByFilter(ctx context.Context, field, value string) ([]Chunk, error) {
	if field == "" || value == "" {
		return nil, vserrors.Invalid("vectordb.GetByFilter", "field and value are required")
	}

	// chromem has no plain filtered scan. A similarity query whose result
	// count equals the collection size returns every document passing the
	// where filter; the query text only affects the (discarded) ordering.
	results, err := s.queryClamped(ctx, value, 0, map[string]string{field: value})
	if err != nil {
		return nil, vserrors.Transient("vectordb.GetByFilter", value, err)
	}

	chunks := make([]Chunk, len(results))
	for i, r := range results {
		chunks[i] = Chunk{
			ID:       r.ID,
			Text:     r.Content,
			Metadata: mapToMetadata(r.Metadata),
		}
	}
	return chunks, nil
}

// queryClamped runs a similarity query with nResults clamped to the
// collection size, which chromem requires. limit 0 means the whole collection.
func (s *ChromemStore) queryClamped(ctx context.Context, text string, limit int, where map[string]string) ([]chromem.Result, error) {
	var lastErr error
	for attempt := 0; attempt < countRetries; attempt++ {
		count := s.collection.Count()
		if count == 0 {
			return nil, nil
		}
		n := limit
		if n <= 0 || n > count {
			n = count
		}

		results, err := s.collection.Query(ctx, text, n, where, nil)
		if err == nil {
			return results, nil
		}
		lastErr = err
		if s.collection.Count() >= count {
			break
		}
	}
	return nil, lastErr
}

// distance converts cosine similarity to a distance clamped to [0, 2];
// normalized float32 vectors can overshoot similarity 1 slightly.
func distance(similarity float32) float32 {
	return max(0, min(2, 1-similarity))
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

// Reset drops every chunk by recreating the collection.
func (s *ChromemStore) Reset() error {
	if err := s.db.DeleteCollection(CollectionName); err != nil {
		return vserrors.Transient("vectordb.Reset", CollectionName, err)
	}
	col, err := s.db.GetOrCreateCollection(CollectionName, map[string]string{"space": "cosine"}, s.embedFunc)
	if err != nil {
		return vserrors.Transient("vectordb.Reset", CollectionName, err)
	}
	s.collection = col
	return nil
}
