package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/WallySa7/alrawi/internal/index"
	"github.com/WallySa7/alrawi/internal/library"
	"github.com/WallySa7/alrawi/internal/mapper"
	"github.com/WallySa7/alrawi/internal/models"
	"github.com/WallySa7/alrawi/internal/service"
	"github.com/WallySa7/alrawi/internal/storage"
)

func testServer(t *testing.T) (*Server, *service.Service) {
	t.Helper()

	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}

	dbFile, err := os.CreateTemp("", "alrawi-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	defaults := mapper.Defaults{VideoStatus: "to-watch", BookStatus: "to-read", Language: "ar"}
	cfg := service.Config{VideosFolder: "Videos", BooksFolder: "Books", Defaults: defaults}
	lib := library.New(store, library.Config{
		VideosFolder: cfg.VideosFolder,
		BooksFolder:  cfg.BooksFolder,
		Defaults:     defaults,
	}, logger)
	svc := service.New(store, lib, db, nil, cfg, logger)

	return New(svc, db), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_library":
		result, err = srv.searchLibrary(ctx, req)
	case "list_videos":
		result, err = srv.listVideos(ctx, req)
	case "list_books":
		result, err = srv.listBooks(ctx, req)
	case "read_document":
		result, err = srv.readDocument(ctx, req)
	case "add_benefit":
		result, err = srv.addBenefit(ctx, req)
	case "get_document_contract":
		result, err = srv.getDocumentContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestReadDocument(t *testing.T) {
	srv, svc := testServer(t)
	path, err := svc.CreateVideo(context.Background(), &models.Video{Title: "Read Me"})
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "read_document", map[string]interface{}{"path": path})
	if r.IsError {
		t.Fatalf("read_document error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "title: Read Me") {
		t.Errorf("document text = %q", resultText(r))
	}
}

func TestReadDocumentMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_document", map[string]interface{}{"path": "Videos/nope.md"})
	if !r.IsError {
		t.Error("expected error for missing document")
	}
}

func TestListVideosFiltered(t *testing.T) {
	srv, svc := testServer(t)
	ctx := context.Background()
	_, _ = svc.CreateVideo(ctx, &models.Video{Title: "Done", Status: "watched"})
	_, _ = svc.CreateVideo(ctx, &models.Video{Title: "Pending", Status: "to-watch"})

	r := callTool(t, srv, "list_videos", map[string]interface{}{"status": "watched"})
	text := resultText(r)
	if !strings.Contains(text, "Done") || strings.Contains(text, "Pending") {
		t.Errorf("filtered list = %q", text)
	}
}

func TestSearchLibrary(t *testing.T) {
	srv, svc := testServer(t)
	_, err := svc.CreateBook(context.Background(), &models.Book{Title: "Fortress of the Muslim", Pages: 200})
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "search_library", map[string]interface{}{"query": "Fortress"})
	if r.IsError {
		t.Fatalf("search error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "Books/Fortress of the Muslim.md") {
		t.Errorf("search result = %q", resultText(r))
	}
}

func TestAddBenefitMaintainsBothRepresentations(t *testing.T) {
	srv, svc := testServer(t)
	ctx := context.Background()
	path, err := svc.CreateBook(ctx, &models.Book{Title: "Host", Pages: 100})
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "add_benefit", map[string]interface{}{
		"sourcePath": path,
		"category":   "aqeedah",
		"text":       "A benefit worth keeping.",
	})
	if r.IsError {
		t.Fatalf("add_benefit error: %s", resultText(r))
	}

	doc, err := svc.Document(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc, "## Benefits") || !strings.Contains(doc, "<!-- start:") {
		t.Errorf("body block missing: %q", doc)
	}
	if !strings.Contains(doc, "benefits:") {
		t.Errorf("frontmatter entry missing: %q", doc)
	}
}

func TestGetDocumentContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_document_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), "Document Format Contract") {
		t.Error("contract text missing")
	}
}
