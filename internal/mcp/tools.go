package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchSnippetsTool defines the search_snippets MCP tool.
var searchSnippetsTool = mcp.NewTool("search_snippets",
	mcp.WithDescription("Search the Obsidian vault semantically and return the most relevant note excerpts, with file, chunk number and relevance for each."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of snippets to return (default 10)"),
	),
)

// searchFullTool defines the search_full MCP tool.
var searchFullTool = mcp.NewTool("search_full",
	mcp.WithDescription("Search the Obsidian vault semantically and return whole matching notes, ranked by their best matching passage."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of notes to return (default 10)"),
	),
)
