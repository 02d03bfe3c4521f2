// Package server wires all MCP components and creates the server
// instance.
//
// This is the composition root: it creates concrete implementations
// and injects them into the tools, prompts, and resources that depend
// on them. No business logic lives here, only wiring.
package server

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/memyselfmike/gao-agile-dev-sub014/internal/config"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/executor"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/lifecycle"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/log"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/pipeline"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/prompts"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/resources"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/tools"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/workflow"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes the document store's database
// connection and must be called on shutdown (typically via defer).
// It is always non-nil and safe to call even if store init failed.
func New() (*server.MCPServer, func(), error) {
	logger := log.GetLogger()

	// --- Create shared dependencies ---

	cwd, err := os.Getwd()
	if err != nil {
		return nil, noop, fmt.Errorf("getting working directory: %w", err)
	}
	projectRoot, err := config.FindProjectRoot(cwd)
	if err != nil {
		return nil, noop, fmt.Errorf("finding project root: %w", err)
	}

	// Config defaults load once at startup from the project the server
	// was launched in. Tool calls may still target other roots.
	defaults, err := config.LoadDefaults(projectRoot)
	if err != nil {
		return nil, noop, fmt.Errorf("loading config defaults: %w", err)
	}

	loader := workflow.NewLoader()
	agent := executor.NewCLI(os.Getenv("GAO_AGENT_CMD"))

	// --- Open the document store ---
	//
	// The store is an independent subsystem: if it fails to open, the
	// pipeline still resolves, renders, executes, and detects
	// artifacts. We log a warning and run without registration.

	cleanup := noop
	var docStore lifecycle.DocumentStore
	store, storeErr := lifecycle.New(lifecycle.DefaultConfig())
	if storeErr != nil {
		logger.WithError(storeErr).Warn("document store unavailable, documents will not be registered")
	} else {
		docStore = store
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.WithError(err).Warn("closing document store")
			}
		}
	}

	orch := pipeline.NewOrchestrator(defaults, agent, lifecycle.NewRegistrar(docStore))

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"gao-agile-dev",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register workflow tools ---

	runTool := tools.NewRunWorkflowTool(loader, orch)
	s.AddTool(runTool.Definition(), runTool.Handle)

	previewTool := tools.NewPreviewTool(loader, defaults)
	s.AddTool(previewTool.Definition(), previewTool.Handle)

	// --- Register document tools ---
	//
	// These take the concrete store, nil when unavailable, and answer
	// with a degraded-mode tool error themselves.

	listTool := tools.NewListDocumentsTool(store)
	s.AddTool(listTool.Definition(), listTool.Handle)

	statusTool := tools.NewDocumentStatusTool(store)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	// --- Register prompts ---

	runPrompt := prompts.NewRunPrompt()
	s.AddPrompt(runPrompt.Definition(), runPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(store)
	s.AddResource(resourceHandler.DocumentsResource(), resourceHandler.HandleDocuments)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default when the store
// is disabled or hasn't been initialized.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// host how and when to use the workflow pipeline.
func serverInstructions() string {
	return `You have access to gao-agile-dev, an agile workflow MCP server.

## WHEN TO USE gao-agile-dev

Suggest running a workflow when the user:
- Wants to plan a product or feature ("we need a PRD", "plan this out")
- Asks for an architecture or design document
- Wants work broken down into epics and stories
- Asks for a QA review or a retrospective

You do NOT need it for one-off questions, small fixes, or ad-hoc coding.

## TYPICAL SEQUENCE

1. gao_preview_instructions — inspect what a workflow will do
2. gao_run_workflow workflow="prd" — product requirements
3. gao_run_workflow workflow="architecture" — system design
4. gao_run_workflow workflow="create-epic" epic="1" — shard the PRD
5. gao_run_workflow workflow="create-story" epic="1" story="1" — next story
6. gao_run_workflow workflow="qa-review" epic="1" story="1" — review it

Epic- and story-scoped workflows require their identifiers: pass
epic/story call parameters or set defaults in gao/config.yaml.

## DOCUMENTS

Every file a workflow produces under docs/, src/, or gao/ is detected
and registered automatically. Use gao_list_documents to browse them and
gao_document_status to move one between draft, active, and obsolete.
The gao://project/documents resource carries the same list as JSON.

## PREVIEW FIRST

Workflows delegate real work to an agent CLI. Preview instructions
before running anything expensive, and surface unresolved placeholder
warnings to the user instead of guessing values.`
}
