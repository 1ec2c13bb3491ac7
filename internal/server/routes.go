package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) registerRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/search/snippets", s.handleSnippets)
		r.Get("/search/full", s.handleFull)
		r.Get("/status", s.handleStatus)
	})
}

// searchParams reads q and limit. It writes the error response itself and
// returns ok=false on bad input.
func (s *Server) searchParams(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, `{"error":"q is required"}`, http.StatusBadRequest)
		return "", 0, false
	}
	limit := s.cfg.DefaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			http.Error(w, `{"error":"limit must be a number"}`, http.StatusBadRequest)
			return "", 0, false
		}
		limit = max(n, 1)
	}
	return q, limit, true
}

func (s *Server) handleSnippets(w http.ResponseWriter, r *http.Request) {
	q, limit, ok := s.searchParams(w, r)
	if !ok {
		return
	}
	results := s.search.Snippets(r.Context(), q, limit)
	writeJSON(w, map[string]any{"query": q, "results": nonNil(results)})
}

func (s *Server) handleFull(w http.ResponseWriter, r *http.Request) {
	q, limit, ok := s.searchParams(w, r)
	if !ok {
		return
	}
	results := s.search.Full(r.Context(), q, limit)
	writeJSON(w, map[string]any{"query": q, "results": nonNil(results)})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var st Status
	if s.status != nil {
		st = s.status()
	}
	writeJSON(w, st)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// nonNil keeps empty result lists encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
