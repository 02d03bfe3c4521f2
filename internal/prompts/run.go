// Package prompts implements the MCP prompt handlers for the workflow
// pipeline.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// RunPrompt handles the gao-run MCP prompt. It guides the AI through
// previewing and then executing a workflow.
type RunPrompt struct{}

// NewRunPrompt creates a RunPrompt.
func NewRunPrompt() *RunPrompt {
	return &RunPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *RunPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("gao-run",
		mcp.WithPromptDescription(
			"Run an agile workflow: preview its instructions, confirm, "+
				"then execute it and register the documents it produces.",
		),
		mcp.WithArgument("workflow",
			mcp.ArgumentDescription("Workflow to run, e.g. 'prd', 'architecture', or 'create-story'"),
		),
		mcp.WithArgument("epic",
			mcp.ArgumentDescription("Epic identifier, for epic-scoped workflows"),
		),
		mcp.WithArgument("story",
			mcp.ArgumentDescription("Story identifier, for story-scoped workflows"),
		),
	)
}

// Handle processes the gao-run prompt request.
func (p *RunPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	workflow := ""
	epic := ""
	story := ""
	if args := req.Params.Arguments; args != nil {
		workflow = args["workflow"]
		epic = args["epic"]
		story = args["story"]
	}
	if workflow == "" {
		return nil, fmt.Errorf("prompts: gao-run requires a workflow argument")
	}

	scope := ""
	callArgs := fmt.Sprintf("workflow=%q", workflow)
	if epic != "" {
		scope += fmt.Sprintf(" for epic %s", epic)
		callArgs += fmt.Sprintf(", epic=%q", epic)
	}
	if story != "" {
		scope += fmt.Sprintf(", story %s", story)
		callArgs += fmt.Sprintf(", story=%q", story)
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Run workflow: %s", workflow),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to run the '%s' workflow%s.\n\n"+
						"Please:\n"+
						"1. Call `gao_preview_instructions` with %s and show me the resolved variables and instructions\n"+
						"2. Flag any unresolved placeholder warnings and ask me how to fill them before continuing\n"+
						"3. Once I confirm, call `gao_run_workflow` with the same arguments\n"+
						"4. Summarize the run report: which documents were produced and registered, and any failures\n",
					workflow, scope, callArgs,
				)),
			},
		},
	}, nil
}
