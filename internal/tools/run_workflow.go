package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/memyselfmike/gao-agile-dev-sub014/internal/executor"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/pipeline"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/variables"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/workflow"
)

// outputTailLimit caps how much streamed executor output the run
// report carries. Older output is discarded first.
const outputTailLimit = 4 * 1024

// RunWorkflowTool handles the gao_run_workflow MCP tool. It drives a
// full pipeline run: resolve variables, render instructions, execute,
// then detect and register artifacts.
type RunWorkflowTool struct {
	loader *workflow.Loader
	orch   *pipeline.Orchestrator
}

// NewRunWorkflowTool creates a RunWorkflowTool with the given loader
// and orchestrator.
func NewRunWorkflowTool(loader *workflow.Loader, orch *pipeline.Orchestrator) *RunWorkflowTool {
	return &RunWorkflowTool{loader: loader, orch: orch}
}

// Definition returns the MCP tool definition for registration.
func (t *RunWorkflowTool) Definition() mcp.Tool {
	return mcp.NewTool("gao_run_workflow",
		mcp.WithDescription(
			"Execute an agile workflow end to end: resolve its variables, "+
				"render its instructions, delegate execution to the agent CLI, "+
				"then detect and register the documents it produced. "+
				"Returns a run report with artifacts and registration results.",
		),
		mcp.WithString("workflow",
			mcp.Required(),
			mcp.Description("Workflow name, e.g. `prd` or `create-story`. See gao_preview_instructions to inspect one first."),
		),
		mcp.WithString("epic",
			mcp.Description("Epic identifier, required by epic-scoped workflows."),
		),
		mcp.WithString("story",
			mcp.Description("Story identifier, required by story-scoped workflows."),
		),
		mcp.WithString("project_root",
			mcp.Description("Project root directory. Defaults to the nearest ancestor containing a gao/ directory."),
		),
	)
}

// Handle processes the gao_run_workflow tool call.
func (t *RunWorkflowTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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
		return t.unknownWorkflowResult(root, name, err), nil
	}

	var output strings.Builder
	run, err := t.orch.Run(ctx, pipeline.Request{
		Definition:  def,
		ProjectRoot: root,
		Epic:        req.GetString("epic", ""),
		Story:       req.GetString("story", ""),
		OnChunk: func(c executor.Chunk) {
			output.WriteString(c.Text)
			output.WriteByte('\n')
		},
	})
	if err != nil {
		var missing *variables.MissingRequiredVariableError
		if errors.As(err, &missing) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"Required variable %q has no value for workflow %q. "+
					"Provide it as a call parameter or set a default in gao/config.yaml.",
				missing.Name, missing.Workflow,
			)), nil
		}
		return nil, fmt.Errorf("running workflow %s: %w", name, err)
	}

	return mcp.NewToolResultText(formatRunReport(run, output.String())), nil
}

func (t *RunWorkflowTool) unknownWorkflowResult(root, name string, loadErr error) *mcp.CallToolResult {
	msg := fmt.Sprintf("Workflow %q not found: %v", name, loadErr)
	if names, err := t.loader.List(root); err == nil && len(names) > 0 {
		msg += "\n\nAvailable workflows: " + strings.Join(names, ", ")
	}
	return mcp.NewToolResultError(msg)
}

// formatRunReport renders one pipeline run as markdown.
func formatRunReport(run *pipeline.Run, output string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Workflow Run\n\n")
	fmt.Fprintf(&b, "**Run ID:** `%s`\n", run.ID)
	fmt.Fprintf(&b, "**Workflow:** %s\n", run.Workflow)
	if run.Epic != "" {
		fmt.Fprintf(&b, "**Epic:** %s\n", run.Epic)
	}
	if run.Story != "" {
		fmt.Fprintf(&b, "**Story:** %s\n", run.Story)
	}
	fmt.Fprintf(&b, "**State:** %s\n", run.State)
	fmt.Fprintf(&b, "**Started:** %s\n", run.StartedAt)
	fmt.Fprintf(&b, "**Finished:** %s\n", run.FinishedAt)

	if run.ExecErr != nil {
		fmt.Fprintf(&b, "\n⚠️ **Executor failed:** %v\n", run.ExecErr)
		b.WriteString("Artifacts produced before the failure are still detected and registered below.\n")
	}

	if len(run.Unresolved) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, name := range run.Unresolved {
			fmt.Fprintf(&b, "- unresolved placeholder `{{%s}}`\n", name)
		}
	}

	b.WriteString("\n## Artifacts\n\n")
	if len(run.Artifacts) == 0 {
		b.WriteString("No new or modified files detected in the tracked directories.\n")
	} else {
		b.WriteString("| Path | Registration |\n")
		b.WriteString("|------|-------------|\n")
		for _, res := range run.Registrations {
			if res.Err != nil {
				fmt.Fprintf(&b, "| `%s` | ❌ %v |\n", res.Path, res.Err)
				continue
			}
			fmt.Fprintf(&b, "| `%s` | ✅ %s by %s (`%s`) |\n",
				res.Path, res.Document.DocType, res.Document.Author, res.Document.ID)
		}
		if len(run.Registrations) == 0 {
			// Store unavailable: artifacts were detected but not registered.
			for _, path := range run.Artifacts {
				fmt.Fprintf(&b, "| `%s` | ⚠️ not registered (document store unavailable) |\n", path)
			}
		}
	}

	if output != "" {
		if len(output) > outputTailLimit {
			output = "…" + output[len(output)-outputTailLimit:]
		}
		b.WriteString("\n## Executor Output\n\n```\n")
		b.WriteString(output)
		b.WriteString("```\n")
	}

	return b.String()
}
