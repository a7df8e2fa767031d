// Package mcpserver exposes Lumina notes to LLM agents over MCP (stdio).
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/lumina/internal/ai"
	"github.com/starford/lumina/internal/apperr"
	"github.com/starford/lumina/internal/models"
	"github.com/starford/lumina/internal/notes"
)

const searchLimit = 50

// Server wraps the MCP server with Lumina tools.
type Server struct {
	mcp         *server.MCPServer
	store       *notes.Store
	transformer ai.Transformer
	now         func() time.Time
}

// New creates an MCP server with every tool and resource registered.
func New(store *notes.Store, transformer ai.Transformer, version string) *Server {
	s := &Server{store: store, transformer: transformer, now: time.Now}

	s.mcp = server.NewMCPServer(
		"Lumina",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search notes by title or content, case-insensitive. Most recently updated first. An empty query lists every note."),
		mcp.WithString("query", mcp.Description("Substring to look for")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read one note as JSON (id, title, content, updatedAt, tags)."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note. It becomes the active note."),
		mcp.WithString("title", mcp.Description("Note title")),
		mcp.WithString("content", mcp.Description("Note body")),
		mcp.WithString("tags", mcp.Description("Comma-separated labels")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Replace the title and/or content of a note. Omitted fields are kept."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("content", mcp.Description("New body")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("transform_note",
		mcp.WithDescription("Run an AI transform over a note's body. See the "+ActionsURI+" resource for actions."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("action", mcp.Required(), mcp.Description("summarize, improve, brainstorm, simplify or expand")),
		mcp.WithBoolean("apply", mcp.Description("Append the result to the note")),
	), s.transformNote)

	s.mcp.AddResource(
		mcp.NewResource(ActionsURI, "Transform actions",
			mcp.WithResourceDescription("The fixed AI transform actions and the instruction each sends."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readActionsResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type noteSummary struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	UpdatedAt int64    `json:"updatedAt"`
	Tags      []string `json:"tags"`
	Preview   string   `json:"preview"`
}

func preview(content string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(content), "\n")
	if r := []rune(line); len(r) > 80 {
		return string(r[:80]) + "…"
	}
	return line
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func storeError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("note not found")
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) searchNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := ""
	if q, err := req.RequireString("query"); err == nil {
		query = q
	}
	found := s.store.Filter(query)
	if len(found) > searchLimit {
		found = found[:searchLimit]
	}
	out := make([]noteSummary, 0, len(found))
	for _, n := range found {
		out = append(out, noteSummary{
			ID:        n.ID,
			Title:     n.DisplayTitle(),
			UpdatedAt: n.UpdatedAt,
			Tags:      n.Tags,
			Preview:   preview(n.Content),
		})
	}
	return jsonResult(out)
}

func (s *Server) readNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.store.Get(id)
	if err != nil {
		return storeError(err), nil
	}
	return jsonResult(n)
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func (s *Server) createNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p models.Patch
	if v, err := req.RequireString("title"); err == nil {
		p.Title = &v
	}
	if v, err := req.RequireString("content"); err == nil {
		p.Content = &v
	}
	if v, err := req.RequireString("tags"); err == nil {
		if tags := splitTags(v); len(tags) > 0 {
			p.Tags = &tags
		}
	}

	n := s.store.Create()
	if !p.Empty() {
		if err := s.store.Update(n.ID, p); err != nil {
			return storeError(err), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", n.ID)), nil
}

func (s *Server) updateNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var p models.Patch
	if v, err := req.RequireString("title"); err == nil {
		p.Title = &v
	}
	if v, err := req.RequireString("content"); err == nil {
		p.Content = &v
	}
	if p.Empty() {
		return mcp.NewToolResultError("nothing to update: pass title and/or content"), nil
	}
	ts := s.now().UnixMilli()
	p.UpdatedAt = &ts
	if err := s.store.Update(id, p); err != nil {
		return storeError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s", id)), nil
}

func (s *Server) transformNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	action, err := ai.ParseAction(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	apply := false
	if v, err := req.RequireBool("apply"); err == nil {
		apply = v
	}

	n, err := s.store.Get(id)
	if err != nil {
		return storeError(err), nil
	}
	result := s.transformer.Transform(ctx, n.Content, action)
	if ai.IsFallback(result) {
		return mcp.NewToolResultError(result), nil
	}
	if apply {
		if err := s.store.ApplyResult(id, result); err != nil {
			return storeError(err), nil
		}
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) readActionsResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ActionsURI,
			MIMEType: "text/markdown",
			Text:     ActionsDocument(),
		},
	}, nil
}
