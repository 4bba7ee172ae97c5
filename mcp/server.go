// Package mcp exposes retrieval and question answering as Model Context
// Protocol tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/fwojciec/siterag"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefaultSearchK is the number of chunks the search tool returns when the
// caller does not ask for a specific number.
const DefaultSearchK = 5

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
}

// Server wraps an MCP server with search and ask tools.
type Server struct {
	mcpServer *server.MCPServer
	retriever siterag.Retriever
	asker     siterag.Asker
}

// NewServer creates an MCP server. The ask tool is registered only when
// asker is non-nil.
func NewServer(config Config, retriever siterag.Retriever, asker siterag.Asker) *Server {
	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer: mcpServer,
		retriever: retriever,
		asker:     asker,
	}

	mcpServer.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Search the indexed website content. Returns one JSON object per matching chunk, nearest first."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of chunks to return (default: 5)"),
		),
	), s.searchHandler)

	if asker != nil {
		mcpServer.AddTool(mcp.NewTool("ask",
			mcp.WithDescription("Answer a question using the indexed website content."),
			mcp.WithString("question",
				mcp.Required(),
				mcp.Description("Question to answer"),
			),
		), s.askHandler)
	}

	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) searchHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	k := req.GetInt("k", DefaultSearchK)
	if k <= 0 {
		k = DefaultSearchK
	}

	var b strings.Builder
	for i, text := range s.retriever.Retrieve(ctx, query, k) {
		raw, err := json.Marshal(struct {
			Rank int    `json:"rank"`
			Text string `json:"text"`
		}{
			Rank: i + 1,
			Text: text,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		b.Write(raw)
		b.WriteByte('\n')
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) askHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question parameter is required"), nil
	}

	answer, err := s.asker.Ask(ctx, &siterag.AskRequest{Question: question})
	if err != nil {
		return mcp.NewToolResultError(siterag.ErrorMessage(err)), nil
	}
	return mcp.NewToolResultText(answer.Answer), nil
}

// Serve speaks the MCP stdio transport over in and out until in reaches EOF
// or ctx is canceled.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}
