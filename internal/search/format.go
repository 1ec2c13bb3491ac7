package search

import (
	"fmt"
	"strings"
)

// NoResults is rendered when a search returns nothing.
const NoResults = "No results found for your query."

// FormatSnippets renders snippets as text for tool and terminal output.
func FormatSnippets(snippets []Snippet) string {
	if len(snippets) == 0 {
		return NoResults
	}

	blocks := make([]string, len(snippets))
	for i, s := range snippets {
		var sb strings.Builder
		fmt.Fprintf(&sb, "**Result %d:**\n", i+1)
		fmt.Fprintf(&sb, "File: %s (%s)\n", s.Metadata.Title, s.Metadata.DocumentID)
		fmt.Fprintf(&sb, "Chunk: %d\n", s.Metadata.ChunkIndex)
		fmt.Fprintf(&sb, "Relevance: %.3f\n", s.Relevance())
		fmt.Fprintf(&sb, "Content:\n%s\n", s.Text)
		sb.WriteString(strings.Repeat("-", 40))
		blocks[i] = sb.String()
	}
	return strings.Join(blocks, "\n")
}

// FormatDocuments renders reconstructed documents as text.
func FormatDocuments(docs []Document) string {
	if len(docs) == 0 {
		return NoResults
	}

	blocks := make([]string, len(docs))
	for i, d := range docs {
		var sb strings.Builder
		fmt.Fprintf(&sb, "**Article %d: %s**\n", i+1, d.Title)
		fmt.Fprintf(&sb, "Path: %s\n", d.DocumentID)
		fmt.Fprintf(&sb, "Relevance Score: %.3f\n", d.Relevance)
		fmt.Fprintf(&sb, "\n%s\n", d.Content)
		sb.WriteString(strings.Repeat("=", 60))
		blocks[i] = sb.String()
	}
	return strings.Join(blocks, "\n\n")
}
