package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/memyselfmike/gao-agile-dev-sub014/internal/config"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/template"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/variables"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/workflow"
)

// PreviewTool handles the gao_preview_instructions MCP tool. It
// resolves variables and renders a workflow's instructions without
// executing anything, so a host can inspect what a run would do.
type PreviewTool struct {
	loader   *workflow.Loader
	defaults config.Defaults
}

func NewPreviewTool(loader *workflow.Loader, defaults config.Defaults) *PreviewTool {
	return &PreviewTool{loader: loader, defaults: defaults}
}

// Definition returns the MCP tool definition for registration.
func (t *PreviewTool) Definition() mcp.Tool {
	return mcp.NewTool("gao_preview_instructions",
		mcp.WithDescription(
			"Resolve a workflow's variables and render its instruction template "+
				"without executing it. Use this to inspect what gao_run_workflow "+
				"would send to the agent.",
		),
		mcp.WithString("workflow",
			mcp.Required(),
			mcp.Description("Workflow name to preview."),
		),
		mcp.WithString("epic",
			mcp.Description("Epic identifier, if the workflow uses one."),
		),
		mcp.WithString("story",
			mcp.Description("Story identifier, if the workflow uses one."),
		),
		mcp.WithString("project_root",
			mcp.Description("Project root directory. Defaults to the nearest ancestor containing a gao/ directory."),
		),
	)
}

// Handle processes the gao_preview_instructions tool call.
func (t *PreviewTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("workflow", "")
	if name == "" {
		return mcp.NewToolResultError("Missing required parameter: workflow"), nil
	}

	root, err := resolveProjectRoot(req.GetString("project_root", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	def, err := t.loader.Load(root, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Workflow %q not found: %v", name, err)), nil
	}

	params := variables.CallParams{
		Epic:        req.GetString("epic", ""),
		Story:       req.GetString("story", ""),
		ProjectRoot: root,
	}
	mapping, err := variables.Resolve(def, t.defaults, params, time.Now())
	if err != nil {
		var missing *variables.MissingRequiredVariableError
		if errors.As(err, &missing) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"Required variable %q has no value for workflow %q. "+
					"Provide it as a call parameter or set a default in gao/config.yaml.",
				missing.Name, missing.Workflow,
			)), nil
		}
		return nil, fmt.Errorf("resolving variables for %s: %w", name, err)
	}

	rendered, unresolved := template.Render(def.Instructions, mapping)

	var b strings.Builder
	fmt.Fprintf(&b, "# Preview: %s\n\n", def.Name)
	if def.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", def.Description)
	}
	fmt.Fprintf(&b, "**Agent:** %s\n", def.Agent)
	if def.Phase != "" {
		fmt.Fprintf(&b, "**Phase:** %s\n", def.Phase)
	}

	b.WriteString("\n## Variables\n\n")
	for _, varName := range mapping.Names() {
		fmt.Fprintf(&b, "- `%s` = %q\n", varName, mapping[varName])
	}

	if len(unresolved) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, placeholder := range unresolved {
			fmt.Fprintf(&b, "- unresolved placeholder `{{%s}}`\n", placeholder)
		}
	}

	b.WriteString("\n## Instructions\n\n")
	b.WriteString(rendered)
	if !strings.HasSuffix(rendered, "\n") {
		b.WriteByte('\n')
	}

	return mcp.NewToolResultText(b.String()), nil
}
