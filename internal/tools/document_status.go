package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/memyselfmike/gao-agile-dev-sub014/internal/lifecycle"
)

// DocumentStatusTool handles the gao_document_status MCP tool. It
// moves a registered document through its lifecycle: draft, active,
// obsolete.
type DocumentStatusTool struct {
	store *lifecycle.Store
}

func NewDocumentStatusTool(store *lifecycle.Store) *DocumentStatusTool {
	return &DocumentStatusTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *DocumentStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("gao_document_status",
		mcp.WithDescription(
			"Update the lifecycle status of a registered document. "+
				"Use gao_list_documents to find document IDs.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Document ID to update."),
		),
		mcp.WithString("status",
			mcp.Required(),
			mcp.Description("New lifecycle status."),
			mcp.Enum(lifecycle.StatusDraft, lifecycle.StatusActive, lifecycle.StatusObsolete),
		),
	)
}

// Handle processes the gao_document_status tool call.
func (t *DocumentStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.store == nil {
		return mcp.NewToolResultError(
			"Document store unavailable. Check the data directory (GAO_DATA_DIR) and restart the server.",
		), nil
	}

	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("Missing required parameter: id"), nil
	}
	status := req.GetString("status", "")
	if !lifecycle.ValidStatus(status) {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Invalid status %q. Valid statuses: %s, %s, %s.",
			status, lifecycle.StatusDraft, lifecycle.StatusActive, lifecycle.StatusObsolete,
		)), nil
	}

	doc, err := t.store.GetDocument(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Document %q not found: %v", id, err)), nil
	}

	if err := t.store.UpdateStatus(id, status); err != nil {
		return nil, fmt.Errorf("updating document status: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Document `%s` (`%s`) moved from **%s** to **%s**.",
		doc.Path, doc.ID, doc.Status, status,
	)), nil
}
