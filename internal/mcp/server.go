// Package mcp exposes the review workflow as MCP tools over stdio, so an
// agent can drive the same submit/review/approve cycle as the CLI. Every
// tool runs through the workflow controller, so local validation (id shape,
// feedback length, status transitions) applies identically.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dmorales/huq/internal/models"
	"github.com/dmorales/huq/internal/state"
	"github.com/dmorales/huq/internal/workflow"
)

// Server wraps the workflow controller and exposes it as MCP tools.
type Server struct {
	ctrl     *workflow.Controller
	store    *state.Store
	api      workflow.Backend
	reviewer string
}

// NewServer creates the MCP server wrapper.
func NewServer(ctrl *workflow.Controller, store *state.Store, api workflow.Backend, reviewer string) *Server {
	return &Server{ctrl: ctrl, store: store, api: api, reviewer: reviewer}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("huq", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.listTool())
	srv.AddTool(s.showTool())
	srv.AddTool(s.submitTool())
	srv.AddTool(s.approveTool())
	srv.AddTool(s.rejectTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// huOut is the JSON shape tools return for an item.
type huOut struct {
	ID          string `json:"id"`
	OriginalID  string `json:"original_id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	Module      string `json:"module"`
	Feature     string `json:"feature"`
	Feedback    string `json:"feedback,omitempty"`
	QAReviewer  string `json:"qa_reviewer,omitempty"`
	Refinements int    `json:"refinements"`
	UpdatedAt   string `json:"updated_at"`
	Content     string `json:"content,omitempty"`
}

func toOut(hu models.HU, withContent bool) huOut {
	out := huOut{
		ID:          hu.ID,
		OriginalID:  hu.OriginalID,
		Title:       hu.Title,
		Status:      string(hu.Status),
		Module:      hu.Module,
		Feature:     hu.Feature,
		Feedback:    hu.Feedback,
		QAReviewer:  hu.QAReviewer,
		Refinements: hu.Refinements,
		UpdatedAt:   hu.UpdatedAt.Format(time.RFC3339),
	}
	if withContent {
		out.Content = hu.Content
	}
	return out
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// huq_list_hus
func (s *Server) listTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("huq_list_hus",
		mcp.WithDescription("List HU items. Returns a JSON array with id, tracker reference, title, labels, status, and review metadata. Content is omitted; use huq_show_hu for it."),
		mcp.WithString("status", mcp.Description("Filter by status: pending (default), accepted, rejected, or all")),
	)
	return tool, s.handleList
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	statusArg := request.GetString("status", string(models.HUStatusPending))

	var status models.HUStatus
	switch statusArg {
	case models.FilterAll:
		status = ""
	default:
		status = models.HUStatus(statusArg)
		if !status.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("unknown status %q (want pending, accepted, rejected, or all)", statusArg)), nil
		}
	}

	items, err := s.api.ListHUs(ctx, status)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list items: %v", err)), nil
	}

	out := make([]huOut, len(items))
	for i, hu := range items {
		out[i] = toOut(hu, false)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal items: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// huq_show_hu
func (s *Server) showTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("huq_show_hu",
		mcp.WithDescription("Show one HU including its refined specification (markdown). Resolves by tracker reference (HU-109 or 109) or backend id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Tracker reference or backend id")),
	)
	return tool, s.handleShow
}

func (s *Server) handleShow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	hu, err := s.resolve(ctx, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.Marshal(toOut(hu, true))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal item: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// huq_submit_hu
func (s *Server) submitTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("huq_submit_hu",
		mcp.WithDescription("Submit a tracker item for AI refinement. The identifier is the numeric tracker id with or without the HU- prefix. Blocks until the backend finishes the initial refinement pass."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Tracker id, e.g. 109 or HU-109")),
	)
	return tool, s.handleSubmit
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	hu, err := s.ctrl.Submit(ctx, identifier)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("submit failed: %v", err)), nil
	}

	data, err := json.Marshal(toOut(hu, true))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal item: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// huq_approve_hu
func (s *Server) approveTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("huq_approve_hu",
		mcp.WithDescription("Approve a pending refined specification. Fails for items that are not pending."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Tracker reference or backend id")),
	)
	return tool, s.handleApprove
}

func (s *Server) handleApprove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	hu, err := s.loadPending(ctx, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.ctrl.Approve(ctx, hu.ID, s.reviewer); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("approve failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"approved":%q}`, hu.OriginalID)), nil
}

// huq_reject_hu
func (s *Server) rejectTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("huq_reject_hu",
		mcp.WithDescription("Reject a pending refined specification with feedback (min 10 characters). The backend re-refines the item asynchronously; poll huq_list_hus to see it return to pending."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Tracker reference or backend id")),
		mcp.WithString("feedback", mcp.Required(), mcp.Description("What the next refinement pass should fix")),
	)
	return tool, s.handleReject
}

func (s *Server) handleReject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	feedback, err := request.RequireString("feedback")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: feedback"), nil
	}

	hu, err := s.loadPending(ctx, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.ctrl.Reject(ctx, hu.ID, feedback, s.reviewer); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reject failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"rejected":%q}`, hu.OriginalID)), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// resolve matches an item by backend id or tracker reference across every
// status.
func (s *Server) resolve(ctx context.Context, ref string) (models.HU, error) {
	items, err := s.api.ListHUs(ctx, "")
	if err != nil {
		return models.HU{}, fmt.Errorf("failed to list items: %v", err)
	}
	if hu, ok := match(items, ref); ok {
		return hu, nil
	}
	return models.HU{}, fmt.Errorf("no item matching %q", ref)
}

// loadPending refreshes the pending queue into the store and resolves ref
// against it, so the workflow transition check sees current state.
func (s *Server) loadPending(ctx context.Context, ref string) (models.HU, error) {
	if err := s.ctrl.Load(ctx); err != nil {
		return models.HU{}, fmt.Errorf("failed to load the queue: %v", err)
	}
	if hu, ok := match(s.store.Review().Items, ref); ok {
		return hu, nil
	}
	return models.HU{}, fmt.Errorf("no pending item matching %q", ref)
}

func match(items []models.HU, ref string) (models.HU, bool) {
	want := ref
	if num, err := models.ParseHUID(ref); err == nil {
		want = "HU-" + num
	}
	for _, hu := range items {
		if hu.ID == ref || strings.EqualFold(hu.OriginalID, want) {
			return hu, true
		}
	}
	return models.HU{}, false
}
