package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/soverin/inkpot/internal/images"
	"github.com/soverin/inkpot/internal/notes"
	"github.com/soverin/inkpot/internal/share"
	"github.com/soverin/inkpot/internal/testutil"
)

func testServer(t *testing.T) (*Server, *notes.Service) {
	t.Helper()

	_, noteFS := testutil.TestDir(t)
	_, imageFS := testutil.TestDir(t)
	logDir, _ := testutil.TestDir(t)
	db := testutil.TestDB(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := notes.NewService(noteFS, images.NewStore(imageFS), db, logger)
	shares := share.NewRegistry(filepath.Join(logDir, "shares.json"), noteFS)

	return New(svc, db, shares), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we invoke the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "share_note":
		result, err = srv.shareNote(ctx, req)
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

func TestCreateAndReadNote(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_note", map[string]interface{}{
		"title":   "Test",
		"content": "# Test\nHello",
	})
	if text := resultText(r); text != "created: Test.md" {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "read_note", map[string]interface{}{
		"filename": "Test.md",
	})
	if text := resultText(r); text != "# Test\nHello" {
		t.Errorf("read result = %q", text)
	}
}

func TestListNotes(t *testing.T) {
	srv, svc := testServer(t)
	if _, err := svc.Create("First"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create("Second"); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "list_notes", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "First.md") || !strings.Contains(text, "Second.md") {
		t.Errorf("list = %q", text)
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"filename": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestSearchNotes(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "create_note", map[string]interface{}{
		"title":   "Brew",
		"content": "cold brew ratios",
	})

	r := callTool(t, srv, "search_notes", map[string]interface{}{"query": "ratios"})
	if text := resultText(r); !strings.Contains(text, "Brew.md") {
		t.Errorf("search = %q", text)
	}
}

func TestShareNote(t *testing.T) {
	srv, svc := testServer(t)
	if _, err := svc.Create("Public"); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "share_note", map[string]interface{}{
		"filename":   "Public.md",
		"expireDays": 7,
	})
	if r.IsError {
		t.Fatalf("share errored: %q", resultText(r))
	}
	if text := resultText(r); !strings.HasPrefix(text, "share id: ") {
		t.Errorf("share = %q", text)
	}

	r = callTool(t, srv, "share_note", map[string]interface{}{"filename": "ghost.md"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}
