// Package resources implements the MCP resource handlers for the
// workflow pipeline.
//
// Resources provide read-only data the host can consume for context.
// They use URI-based addressing (gao://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/memyselfmike/gao-agile-dev-sub014/internal/lifecycle"
)

// DocumentsURI addresses the registered-documents resource.
const DocumentsURI = "gao://project/documents"

// Handler manages the pipeline's resource endpoints.
type Handler struct {
	store *lifecycle.Store
}

// NewHandler creates a resource Handler. A nil store serves the
// degraded-mode error resource instead of document data.
func NewHandler(store *lifecycle.Store) *Handler {
	return &Handler{store: store}
}

// DocumentsResource returns the MCP resource definition for the
// registered document list.
func (h *Handler) DocumentsResource() mcp.Resource {
	return mcp.NewResource(
		DocumentsURI,
		"Project Documents",
		mcp.WithResourceDescription("Documents registered by workflow runs, newest first"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleDocuments returns the registered documents as JSON.
func (h *Handler) HandleDocuments(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if h.store == nil {
		return errorResource(req.Params.URI, "document store unavailable"), nil
	}

	docs, err := h.store.ListDocuments(lifecycle.ListFilter{})
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	if docs == nil {
		docs = []lifecycle.DocumentRecord{}
	}

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling documents: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
