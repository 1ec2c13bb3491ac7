// Package search answers queries against the chunk index, either as ranked
// chunk snippets or as whole documents reassembled from their chunks.
//
// Both operations are total: index failures are logged and reported to the
// caller as an empty result.
package search

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/vaultsearch/internal/vectordb"
)

// Oversample is how many chunk hits are requested per wanted document, since
// several top hits usually belong to the same document.
const Oversample = 3

const fetchConcurrency = 4

// Snippet is one chunk hit.
type Snippet struct {
	ChunkID  string                 `json:"chunk_id"`
	Text     string                 `json:"text"`
	Metadata vectordb.ChunkMetadata `json:"metadata"`
	Distance float32                `json:"distance"`
}

// Relevance is 1 - Distance.
func (s Snippet) Relevance() float32 { return 1 - s.Distance }

// Document is a whole note reassembled from its chunks. Content keeps the
// overlapping bytes shared by consecutive chunks, so text at every chunk
// boundary appears twice.
type Document struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	FullPath   string  `json:"full_path"`
	Content    string  `json:"content"`
	Relevance  float32 `json:"relevance_score"`
}

// Service runs searches against an index.
type Service struct {
	index  vectordb.Index
	logger *slog.Logger
}

// NewService creates a Service. A nil logger means slog.Default().
func NewService(index vectordb.Index, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{index: index, logger: logger}
}

// Snippets returns up to limit chunks ordered by ascending distance.
func (s *Service) Snippets(ctx context.Context, query string, limit int) []Snippet {
	if limit <= 0 {
		return nil
	}

	matches, err := s.index.Query(ctx, query, limit, vectordb.IncludeAll)
	if err != nil {
		s.logger.Error("snippet search failed", "query", query, "err", err)
		return nil
	}

	snippets := make([]Snippet, 0, min(len(matches), limit))
	for _, m := range matches {
		if len(snippets) == limit {
			break
		}
		snippets = append(snippets, Snippet{
			ChunkID:  m.ID,
			Text:     m.Text,
			Metadata: m.Metadata,
			Distance: m.Distance,
		})
	}
	slices.SortStableFunc(snippets, func(a, b Snippet) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return snippets
}

type ranked struct {
	id       string
	distance float32
}

// Full returns up to limit distinct documents ordered by their best chunk
// distance, each reassembled from all of its chunks.
func (s *Service) Full(ctx context.Context, query string, limit int) []Document {
	if limit <= 0 {
		return nil
	}

	matches, err := s.index.Query(ctx, query, limit*Oversample, vectordb.IncludeMetadatas|vectordb.IncludeDistances)
	if err != nil {
		s.logger.Error("full search failed", "query", query, "err", err)
		return nil
	}

	top := bestPerDocument(matches, limit)
	if len(top) == 0 {
		return nil
	}

	chunkSets := make([][]vectordb.Chunk, len(top))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, r := range top {
		g.Go(func() error {
			chunks, err := s.index.GetByFilter(gctx, vectordb.FieldDocumentID, r.id)
			if err != nil {
				return err
			}
			chunkSets[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("full search fetch failed", "query", query, "err", err)
		return nil
	}

	docs := make([]Document, 0, len(top))
	for i, r := range top {
		// The document may have been removed between the query and the fetch.
		if len(chunkSets[i]) == 0 {
			continue
		}
		docs = append(docs, reconstruct(r, chunkSets[i]))
	}
	return docs
}

// bestPerDocument collapses chunk matches to one entry per document with the
// minimum distance seen, sorted ascending and cut to limit.
func bestPerDocument(matches []vectordb.Match, limit int) []ranked {
	best := make(map[string]float32)
	for _, m := range matches {
		id := m.Metadata.DocumentID
		if id == "" {
			continue
		}
		if d, ok := best[id]; !ok || m.Distance < d {
			best[id] = m.Distance
		}
	}

	out := make([]ranked, 0, len(best))
	for id, d := range best {
		out = append(out, ranked{id: id, distance: d})
	}
	slices.SortFunc(out, func(a, b ranked) int {
		if c := cmp.Compare(a.distance, b.distance); c != 0 {
			return c
		}
		return strings.Compare(a.id, b.id)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func reconstruct(r ranked, chunks []vectordb.Chunk) Document {
	slices.SortFunc(chunks, func(a, b vectordb.Chunk) int {
		return cmp.Compare(a.Metadata.ChunkIndex, b.Metadata.ChunkIndex)
	})

	// Document-level fields are identical on every chunk; prefer the title chunk.
	head := chunks[0].Metadata
	var sb strings.Builder
	for _, c := range chunks {
		if c.Metadata.ChunkIndex == 0 {
			continue
		}
		sb.WriteString(c.Text)
	}

	title := head.Title
	if title == "" {
		title = r.id
	}
	return Document{
		DocumentID: r.id,
		Title:      title,
		FullPath:   head.FullPath,
		Content:    sb.String(),
		Relevance:  1 - r.distance,
	}
}
