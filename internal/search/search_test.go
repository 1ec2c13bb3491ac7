package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/vaultsearch/internal/indexer"
	"github.com/ziadkadry99/vaultsearch/internal/vectordb"
	"github.com/ziadkadry99/vaultsearch/internal/walker"
)

// mockEmbedder returns deterministic embeddings based on text content.
type mockEmbedder struct{ dims int }

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, m.dims)
		for j, ch := range text {
			vec[(int(ch)+j)%m.dims] += 1
		}
		var norm float64
		for _, v := range vec {
			norm += float64(v * v)
		}
		norm = math.Sqrt(norm)
		for k := range vec {
			vec[k] = float32(float64(vec[k]) / norm)
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

type note struct {
	id, content string
}

func (n note) ID() string                   { return n.id }
func (n note) FullPath() string             { return "/vault/" + n.id }
func (n note) Title() string                { return walker.Title(n.id) }
func (n note) Content() (string, error)     { return n.content, nil }
func (n note) Fingerprint() (string, error) { return walker.Fingerprint(strings.NewReader(n.content)) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// indexNotes builds a chromem index through the real sync engine.
func indexNotes(t *testing.T, chunker *indexer.Chunker, notes ...note) *vectordb.ChromemStore {
	t.Helper()
	store, err := vectordb.NewChromemStore(&mockEmbedder{dims: 64})
	require.NoError(t, err)
	state, err := indexer.LoadStateStore(filepath.Join(t.TempDir(), indexer.StateFileName))
	require.NoError(t, err)

	engine := indexer.NewEngine(chunker, state, store, indexer.WithLogger(quietLogger()))
	sources := make([]indexer.Source, len(notes))
	for i, n := range notes {
		sources[i] = n
	}
	report := engine.FullScan(context.Background(), sources, nil)
	require.Zero(t, report.Failed)
	return store
}

func helloWorldNotes() []note {
	return []note{
		{id: "notes/first.md", content: "hello world"},
		{id: "notes/second.md", content: "hello world again"},
		{id: "notes/other.md", content: "qqqq zzzz kkkk"},
	}
}

func TestSnippets_HelloWorld(t *testing.T) {
	store := indexNotes(t, indexer.DefaultChunker(), helloWorldNotes()...)
	svc := NewService(store, quietLogger())

	snippets := svc.Snippets(context.Background(), "hello world", 5)
	require.Len(t, snippets, 5)

	docs := map[string]bool{}
	for i, s := range snippets {
		docs[s.Metadata.DocumentID] = true
		assert.Equal(t, vectordb.ChunkID(s.Metadata.DocumentID, s.Metadata.ChunkIndex), s.ChunkID)
		if i > 0 {
			assert.GreaterOrEqual(t, s.Distance, snippets[i-1].Distance)
		}
	}
	assert.True(t, docs["notes/first.md"])
	assert.True(t, docs["notes/second.md"])

	assert.Equal(t, "notes/first.md", snippets[0].Metadata.DocumentID)
	assert.Equal(t, "hello world", snippets[0].Text)
	assert.InDelta(t, 1.0, snippets[0].Relevance(), 1e-5)
}

func TestFull_HelloWorld(t *testing.T) {
	store := indexNotes(t, indexer.DefaultChunker(), helloWorldNotes()...)
	svc := NewService(store, quietLogger())
	ctx := context.Background()

	docs := svc.Full(ctx, "hello world", 2)
	require.Len(t, docs, 2)
	assert.Equal(t, "notes/first.md", docs[0].DocumentID)
	assert.Equal(t, "notes/second.md", docs[1].DocumentID)
	assert.GreaterOrEqual(t, docs[0].Relevance, docs[1].Relevance)

	// Relevance is 1 - the best distance among that document's chunks.
	all, err := store.Query(ctx, "hello world", store.Count(), vectordb.IncludeAll)
	require.NoError(t, err)
	best := map[string]float32{}
	for _, m := range all {
		if d, ok := best[m.Metadata.DocumentID]; !ok || m.Distance < d {
			best[m.Metadata.DocumentID] = m.Distance
		}
	}
	for _, d := range docs {
		assert.InDelta(t, 1-best[d.DocumentID], d.Relevance, 1e-6)
	}

	assert.Equal(t, "first", docs[0].Title)
	assert.Equal(t, "/vault/notes/first.md", docs[0].FullPath)
	assert.Equal(t, "hello world", docs[0].Content)
	assert.Equal(t, "hello world again", docs[1].Content)
}

func TestFull_UniqueAndBounded(t *testing.T) {
	chunker, err := indexer.NewChunker(16, 4)
	require.NoError(t, err)

	var notes []note
	for _, id := range []string{"a.md", "b.md", "c.md", "d.md"} {
		notes = append(notes, note{id: id, content: strings.Repeat("search engines rank text "+id, 4)})
	}
	store := indexNotes(t, chunker, notes...)
	svc := NewService(store, quietLogger())

	for limit := 1; limit <= 6; limit++ {
		docs := svc.Full(context.Background(), "search engines", limit)
		assert.LessOrEqual(t, len(docs), limit)
		seen := map[string]bool{}
		for _, d := range docs {
			assert.False(t, seen[d.DocumentID], "duplicate %s", d.DocumentID)
			seen[d.DocumentID] = true
		}
	}
}

func TestFull_ReconstructKeepsOverlap(t *testing.T) {
	chunker, err := indexer.NewChunker(10, 4)
	require.NoError(t, err)
	store := indexNotes(t, chunker, note{id: "o.md", content: "0123456789abcdef"})
	svc := NewService(store, quietLogger())

	docs := svc.Full(context.Background(), "0123", 1)
	require.Len(t, docs, 1)
	// Windows [0,10) and [6,16) share "6789".
	assert.Equal(t, "01234567896789abcdef", docs[0].Content)
}

func TestSearch_EmptyIndexAndQuery(t *testing.T) {
	store, err := vectordb.NewChromemStore(&mockEmbedder{dims: 8})
	require.NoError(t, err)
	svc := NewService(store, quietLogger())
	ctx := context.Background()

	assert.Empty(t, svc.Snippets(ctx, "anything", 5))
	assert.Empty(t, svc.Full(ctx, "anything", 5))

	populated := indexNotes(t, indexer.DefaultChunker(), helloWorldNotes()...)
	svc = NewService(populated, quietLogger())
	assert.Empty(t, svc.Snippets(ctx, "", 5))
	assert.Empty(t, svc.Full(ctx, "", 5))
	assert.Empty(t, svc.Snippets(ctx, "hello", 0))
	assert.Empty(t, svc.Full(ctx, "hello", -1))
}

// stubIndex serves canned matches and chunk sets.
type stubIndex struct {
	matches  []vectordb.Match
	chunks   map[string][]vectordb.Chunk
	queryErr error
	fetchErr error
}

func (s *stubIndex) Upsert(context.Context, []vectordb.Chunk) error { return nil }
func (s *stubIndex) Delete(context.Context, ...string) error        { return nil }
func (s *stubIndex) Count() int                                     { return len(s.matches) }

func (s *stubIndex) Query(_ context.Context, _ string, topK int, _ vectordb.Include) ([]vectordb.Match, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.matches[:min(topK, len(s.matches))], nil
}

func (s *stubIndex) GetByFilter(_ context.Context, _ string, value string) ([]vectordb.Chunk, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return append([]vectordb.Chunk(nil), s.chunks[value]...), nil
}

func match(doc string, idx int, dist float32) vectordb.Match {
	return vectordb.Match{
		Chunk: vectordb.Chunk{
			ID:       vectordb.ChunkID(doc, idx),
			Text:     doc,
			Metadata: vectordb.ChunkMetadata{DocumentID: doc, ChunkIndex: idx},
		},
		Distance: dist,
	}
}

func chunk(doc, title string, idx int, text string) vectordb.Chunk {
	return vectordb.Chunk{
		ID:   vectordb.ChunkID(doc, idx),
		Text: text,
		Metadata: vectordb.ChunkMetadata{
			DocumentID: doc, Title: title, FullPath: "/v/" + doc, ChunkIndex: idx, IsTitleChunk: idx == 0,
		},
	}
}

func TestFull_CollapsesToBestChunkPerDocument(t *testing.T) {
	idx := &stubIndex{
		matches: []vectordb.Match{
			match("a.md", 2, 0.10),
			match("a.md", 1, 0.15),
			match("b.md", 1, 0.20),
			match("a.md", 3, 0.25),
			match("c.md", 1, 0.30),
			match("b.md", 2, 0.05),
		},
		chunks: map[string][]vectordb.Chunk{
			"a.md": {chunk("a.md", "a", 2, "two "), chunk("a.md", "a", 0, "a"), chunk("a.md", "a", 1, "one ")},
			"b.md": {chunk("b.md", "b", 1, "bee")},
			"c.md": {chunk("c.md", "c", 0, "c"), chunk("c.md", "c", 1, "sea")},
		},
	}
	svc := NewService(idx, quietLogger())

	docs := svc.Full(context.Background(), "q", 2)
	require.Len(t, docs, 2)

	assert.Equal(t, "b.md", docs[0].DocumentID)
	assert.InDelta(t, 0.95, docs[0].Relevance, 1e-6)
	// No title chunk stored: fields fall back to the first chunk.
	assert.Equal(t, "b", docs[0].Title)
	assert.Equal(t, "bee", docs[0].Content)

	assert.Equal(t, "a.md", docs[1].DocumentID)
	assert.InDelta(t, 0.90, docs[1].Relevance, 1e-6)
	assert.Equal(t, "one two ", docs[1].Content)
	assert.Equal(t, "/v/a.md", docs[1].FullPath)
}

func TestFull_SkipsDocumentsRemovedBeforeFetch(t *testing.T) {
	idx := &stubIndex{
		matches: []vectordb.Match{match("gone.md", 1, 0.1), match("here.md", 1, 0.2)},
		chunks:  map[string][]vectordb.Chunk{"here.md": {chunk("here.md", "here", 1, "x")}},
	}
	docs := NewService(idx, quietLogger()).Full(context.Background(), "q", 5)
	require.Len(t, docs, 1)
	assert.Equal(t, "here.md", docs[0].DocumentID)
}

func TestSearch_IndexFailuresYieldEmpty(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("index unreachable")

	svc := NewService(&stubIndex{queryErr: boom}, quietLogger())
	assert.Empty(t, svc.Snippets(ctx, "q", 3))
	assert.Empty(t, svc.Full(ctx, "q", 3))

	svc = NewService(&stubIndex{matches: []vectordb.Match{match("a.md", 1, 0.1)}, fetchErr: boom}, quietLogger())
	assert.Empty(t, svc.Full(ctx, "q", 3))
	assert.Len(t, svc.Snippets(ctx, "q", 3), 1)
}

func TestSnippets_TruncatesAndSorts(t *testing.T) {
	idx := &stubIndex{matches: []vectordb.Match{
		match("a.md", 1, 0.3), match("b.md", 1, 0.1), match("c.md", 1, 0.2),
	}}
	snippets := NewService(idx, quietLogger()).Snippets(context.Background(), "q", 2)
	require.Len(t, snippets, 2)
	assert.Equal(t, "b.md_1", snippets[0].ChunkID)
	assert.Equal(t, "a.md_1", snippets[1].ChunkID)
}
