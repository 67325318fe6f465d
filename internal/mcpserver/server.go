// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Alrawi library tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/WallySa7/alrawi/internal/index"
	"github.com/WallySa7/alrawi/internal/models"
	"github.com/WallySa7/alrawi/internal/query"
	"github.com/WallySa7/alrawi/internal/service"
)

// Searcher is the slice of the search index the MCP server needs.
type Searcher interface {
	Search(query string, limit int) ([]index.SearchResult, error)
}

// Server wraps the MCP server with Alrawi tools.
type Server struct {
	mcp *server.MCPServer
	svc *service.Service
	idx Searcher
}

// New creates a new MCP server with all Alrawi tools registered.
func New(svc *service.Service, idx Searcher) *Server {
	s := &Server{svc: svc, idx: idx}

	s.mcp = server.NewMCPServer(
		"Alrawi",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_library",
		mcp.WithDescription("Full-text search through record titles, creators, and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchLibrary)

	s.mcp.AddTool(mcp.NewTool("list_videos",
		mcp.WithDescription("List video and playlist records, optionally filtered by status or tag."),
		mcp.WithString("status", mcp.Description("Optional status filter")),
		mcp.WithString("tag", mcp.Description("Optional hierarchical tag filter")),
	), s.listVideos)

	s.mcp.AddTool(mcp.NewTool("list_books",
		mcp.WithDescription("List book records, optionally filtered by status or tag."),
		mcp.WithString("status", mcp.Description("Optional status filter")),
		mcp.WithString("tag", mcp.Description("Optional hierarchical tag filter")),
	), s.listBooks)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the full Markdown text of a record document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the record (e.g. Videos/lecture.md)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("add_benefit",
		mcp.WithDescription("Add a benefit (note/excerpt) to a record document. "+
			"Maintains both the frontmatter entry and the marked body block. "+
			"Read the contract first via the get_document_contract tool or the "+
			"alrawi://document-format resource."),
		mcp.WithString("sourcePath", mcp.Required(), mcp.Description("Path of the source record")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Benefit category (hierarchical on /)")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Benefit text")),
		mcp.WithString("title", mcp.Description("Optional benefit title")),
	), s.addBenefit)

	s.mcp.AddTool(mcp.NewTool("get_document_contract",
		mcp.WithDescription("Returns the canonical Alrawi record format contract. "+
			"Call this before creating or editing record documents."),
	), s.getDocumentContract)

	// Resource: document format contract.
	s.mcp.AddResource(
		mcp.NewResource("alrawi://document-format", "Document Format Contract",
			mcp.WithResourceDescription("Canonical record document format that all library documents follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchLibrary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.idx.Search(q, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func toolSpec(req mcp.CallToolRequest) query.Spec {
	var spec query.Spec
	if v, err := req.RequireString("status"); err == nil && v != "" {
		spec.Statuses = []string{v}
	}
	if v, err := req.RequireString("tag"); err == nil && v != "" {
		spec.Tags = []string{v}
	}
	return spec
}

func (s *Server) listVideos(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	col, err := s.svc.Library().Videos()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	spec := toolSpec(req)
	out, _ := json.MarshalIndent(map[string]any{
		"videos":    query.FilterVideos(col.Videos, spec),
		"playlists": query.FilterPlaylists(col.Playlists, spec),
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listBooks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	col, err := s.svc.Library().Books()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(query.FilterBooks(col.Books, toolSpec(req)), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := s.svc.Document(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) addBenefit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourcePath, err := req.RequireString("sourcePath")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b := &models.Benefit{
		SourcePath: sourcePath,
		Category:   category,
		Text:       text,
	}
	if title, titleErr := req.RequireString("title"); titleErr == nil {
		b.Title = title
	}
	if err := s.svc.UpsertBenefit(ctx, b); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added benefit %s to %s", b.ID, sourcePath)), nil
}

func (s *Server) getDocumentContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readDocumentFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "alrawi://document-format",
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}
