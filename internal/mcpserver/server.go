// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Inkpot tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/soverin/inkpot/internal/apperr"
	"github.com/soverin/inkpot/internal/index"
	"github.com/soverin/inkpot/internal/notes"
	"github.com/soverin/inkpot/internal/share"
)

// Server wraps the MCP server with Inkpot tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *notes.Service
	db     *index.DB
	shares *share.Registry
}

// New creates a new MCP server with all Inkpot tools registered.
func New(svc *notes.Service, db *index.DB, shares *share.Registry) *Server {
	s := &Server{svc: svc, db: db, shares: shares}

	s.mcp = server.NewMCPServer(
		"Inkpot",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes, newest first, with pagination."),
		mcp.WithNumber("page", mcp.Description("Page number (1-based, default 1)")),
		mcp.WithNumber("pageSize", mcp.Description("Notes per page (default 20)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a Markdown note."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Note filename (e.g. ideas.md)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new Markdown note with the given title and content. "+
			"A title collision is resolved by appending a timestamp to the filename."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title (becomes the filename)")),
		mcp.WithString("content", mcp.Description("Optional initial Markdown content")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through note titles and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("share_note",
		mcp.WithDescription("Create a share link id for a note, optionally expiring after a number of days."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Filename of the note to share")),
		mcp.WithNumber("expireDays", mcp.Description("Days until the link expires (0 or omitted for no expiry)")),
	), s.shareNote)

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

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page := req.GetInt("page", 1)
	pageSize := req.GetInt("pageSize", 20)

	res, err := s.svc.List(page, pageSize)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(res.Items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.svc.Read(filename)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", filename)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	note, err := s.svc.Create(title)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if content := req.GetString("content", ""); content != "" {
		if err := s.svc.Save(note.Filename, []byte(content)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", note.Filename)), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) shareNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	expireDays := req.GetInt("expireDays", 0)

	id, err := s.shares.Create(filename, expireDays)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", filename)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("share id: %s", id)), nil
}
