package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ziadkadry99/vaultsearch/internal/search"
	"github.com/ziadkadry99/vaultsearch/internal/vectordb"
)

// fakeIndex returns its chunks in order for every query.
type fakeIndex struct {
	chunks   []vectordb.Chunk
	lastTopK int
}

func (f *fakeIndex) Upsert(context.Context, []vectordb.Chunk) error { return nil }
func (f *fakeIndex) Delete(context.Context, ...string) error        { return nil }
func (f *fakeIndex) Count() int                                     { return len(f.chunks) }

func (f *fakeIndex) Query(_ context.Context, _ string, topK int, _ vectordb.Include) ([]vectordb.Match, error) {
	f.lastTopK = topK
	var out []vectordb.Match
	for i, c := range f.chunks {
		if i == topK {
			break
		}
		out = append(out, vectordb.Match{Chunk: c, Distance: 0.25 * float32(i)})
	}
	return out, nil
}

func (f *fakeIndex) GetByFilter(_ context.Context, _ string, value string) ([]vectordb.Chunk, error) {
	var out []vectordb.Chunk
	for _, c := range f.chunks {
		if c.Metadata.DocumentID == value {
			out = append(out, c)
		}
	}
	return out, nil
}

func chunk(doc string, idx int, text string) vectordb.Chunk {
	return vectordb.Chunk{
		ID:       vectordb.ChunkID(doc, idx),
		Text:     text,
		Metadata: vectordb.ChunkMetadata{DocumentID: doc, Title: doc, ChunkIndex: idx},
	}
}

func newTestServer(cfg Config, idx *fakeIndex, status StatusFunc) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, search.NewService(idx, logger), status, logger)
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(Config{}, &fakeIndex{}, nil)

	w := get(t, srv, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(Config{AllowAll: true}, &fakeIndex{}, nil)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestSearchSnippets(t *testing.T) {
	idx := &fakeIndex{chunks: []vectordb.Chunk{
		chunk("a.md", 1, "alpha"),
		chunk("b.md", 1, "beta"),
		chunk("c.md", 1, "gamma"),
	}}
	srv := newTestServer(Config{DefaultLimit: 2}, idx, nil)

	w := get(t, srv, "/api/search/snippets?q=alpha")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Query   string           `json:"query"`
		Results []search.Snippet `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Query != "alpha" {
		t.Errorf("query = %q", body.Query)
	}
	if len(body.Results) != 2 {
		t.Fatalf("expected default limit of 2 results, got %d", len(body.Results))
	}
	if body.Results[0].ChunkID != "a.md_1" || body.Results[0].Metadata.DocumentID != "a.md" {
		t.Errorf("unexpected first result %+v", body.Results[0])
	}

	get(t, srv, "/api/search/snippets?q=alpha&limit=0")
	if idx.lastTopK != 1 {
		t.Errorf("limit 0 should be raised to 1, got %d", idx.lastTopK)
	}
}

func TestSearchFull(t *testing.T) {
	idx := &fakeIndex{chunks: []vectordb.Chunk{
		chunk("a.md", 1, "one "),
		chunk("a.md", 2, "two"),
		chunk("b.md", 1, "beta"),
	}}
	srv := newTestServer(Config{}, idx, nil)

	w := get(t, srv, "/api/search/full?q=one&limit=5")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Results []search.Document `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Results) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(body.Results))
	}
	if body.Results[0].DocumentID != "a.md" || body.Results[0].Content != "one two" {
		t.Errorf("unexpected first document %+v", body.Results[0])
	}
	if body.Results[1].Relevance != 0.5 {
		t.Errorf("relevance = %v, want 0.5", body.Results[1].Relevance)
	}
}

func TestSearchBadRequests(t *testing.T) {
	srv := newTestServer(Config{}, &fakeIndex{}, nil)

	for _, target := range []string{
		"/api/search/snippets",
		"/api/search/full?q=",
		"/api/search/full?q=x&limit=many",
	} {
		if w := get(t, srv, target); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, w.Code)
		}
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	srv := newTestServer(Config{}, &fakeIndex{}, nil)

	w := get(t, srv, "/api/search/full?q=anything")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(body["results"]) != "[]" {
		t.Errorf("results = %s, want []", body["results"])
	}
}

func TestStatus(t *testing.T) {
	srv := newTestServer(Config{}, &fakeIndex{}, func() Status {
		return Status{VaultPath: "/vault", TrackedDocuments: 3, Chunks: 9}
	})

	w := get(t, srv, "/api/status")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var st Status
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st != (Status{VaultPath: "/vault", TrackedDocuments: 3, Chunks: 9}) {
		t.Errorf("unexpected status %+v", st)
	}
}
