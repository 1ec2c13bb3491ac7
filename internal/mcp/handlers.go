package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/vaultsearch/internal/search"
)

// handleSearchSnippets returns the best matching chunks as formatted text.
func (s *Server) handleSearchSnippets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	limit := s.limit(request)

	snippets := s.search.Snippets(ctx, query, limit)
	s.logger.Debug("search_snippets", "query", query, "limit", limit, "results", len(snippets))
	return mcp.NewToolResultText(search.FormatSnippets(snippets)), nil
}

// handleSearchFull returns whole matching notes as formatted text.
func (s *Server) handleSearchFull(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	limit := s.limit(request)

	docs := s.search.Full(ctx, query, limit)
	s.logger.Debug("search_full", "query", query, "limit", limit, "results", len(docs))
	return mcp.NewToolResultText(search.FormatDocuments(docs)), nil
}

// limit reads the optional limit argument. Values below 1 are raised to 1.
func (s *Server) limit(request mcp.CallToolRequest) int {
	return max(request.GetInt("limit", s.defaultLimit), 1)
}
