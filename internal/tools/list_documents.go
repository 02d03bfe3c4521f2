package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/memyselfmike/gao-agile-dev-sub014/internal/lifecycle"
)

// ListDocumentsTool handles the gao_list_documents MCP tool. It
// queries the document store, newest first.
type ListDocumentsTool struct {
	store *lifecycle.Store
}

func NewListDocumentsTool(store *lifecycle.Store) *ListDocumentsTool {
	return &ListDocumentsTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ListDocumentsTool) Definition() mcp.Tool {
	return mcp.NewTool("gao_list_documents",
		mcp.WithDescription(
			"List the project documents registered by workflow runs, "+
				"newest first. Filter by status or document type.",
		),
		mcp.WithString("status",
			mcp.Description("Filter by lifecycle status."),
			mcp.Enum(lifecycle.StatusDraft, lifecycle.StatusActive, lifecycle.StatusObsolete),
		),
		mcp.WithString("doc_type",
			mcp.Description("Filter by document type, e.g. `product-requirements` or `story`."),
		),
	)
}

// Handle processes the gao_list_documents tool call.
func (t *ListDocumentsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.store == nil {
		return mcp.NewToolResultError(
			"Document store unavailable. Check the data directory (GAO_DATA_DIR) and restart the server.",
		), nil
	}

	docs, err := t.store.ListDocuments(lifecycle.ListFilter{
		Status:  req.GetString("status", ""),
		DocType: req.GetString("doc_type", ""),
	})
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	if len(docs) == 0 {
		return mcp.NewToolResultText(
			"No documents registered yet. Run a workflow with gao_run_workflow to produce some.",
		), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Project Documents (%d)\n\n", len(docs))
	b.WriteString("| ID | Path | Type | Author | Status | Created |\n")
	b.WriteString("|----|------|------|--------|--------|--------|\n")
	for _, doc := range docs {
		fmt.Fprintf(&b, "| `%s` | `%s` | %s | %s | %s | %s |\n",
			doc.ID, doc.Path, doc.DocType, doc.Author, doc.Status, doc.CreatedAt)
	}

	return mcp.NewToolResultText(b.String()), nil
}
