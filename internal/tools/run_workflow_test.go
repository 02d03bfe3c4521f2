package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/memyselfmike/gao-agile-dev-sub014/internal/executor"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/lifecycle"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/workflow"
)

func TestRunWorkflowTool_Handle_Success(t *testing.T) {
	root := setupProject(t)
	store := newTestStore(t)

	exec := &executor.Scripted{
		Chunks: []string{"drafting the PRD", "saved"},
		Hook: func() {
			if err := os.WriteFile(filepath.Join(root, "docs", "PRD.md"), []byte("# PRD\n"), 0o644); err != nil {
				t.Errorf("write artifact: %v", err)
			}
		},
	}
	tool := NewRunWorkflowTool(workflow.NewLoader(), newTestOrchestrator(exec, store))

	result, err := tool.Handle(context.Background(), makeRequest(map[string]interface{}{
		"workflow":     "prd",
		"project_root": root,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	text := getResultText(result)
	for _, want := range []string{
		"Workflow Run",
		"**Workflow:** prd",
		"**State:** registered",
		"docs/PRD.md",
		"product-requirements",
		"Product Manager",
		"drafting the PRD",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("result should contain %q\ngot:\n%s", want, text)
		}
	}

	docs, err := store.ListDocuments(lifecycle.ListFilter{})
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("store holds %d documents, want 1", len(docs))
	}
}

func TestRunWorkflowTool_Handle_MissingWorkflowParam(t *testing.T) {
	tool := NewRunWorkflowTool(workflow.NewLoader(), newTestOrchestrator(&executor.Scripted{}, nil))

	result, err := tool.Handle(context.Background(), makeRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("expected a tool error for a missing workflow parameter")
	}
	if !strings.Contains(getResultText(result), "workflow") {
		t.Errorf("error should name the missing parameter, got: %s", getResultText(result))
	}
}

func TestRunWorkflowTool_Handle_UnknownWorkflow(t *testing.T) {
	root := setupProject(t)
	tool := NewRunWorkflowTool(workflow.NewLoader(), newTestOrchestrator(&executor.Scripted{}, nil))

	result, err := tool.Handle(context.Background(), makeRequest(map[string]interface{}{
		"workflow":     "does-not-exist",
		"project_root": root,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("expected a tool error for an unknown workflow")
	}
	text := getResultText(result)
	if !strings.Contains(text, "does-not-exist") {
		t.Errorf("error should name the workflow, got: %s", text)
	}
	if !strings.Contains(text, "Available workflows") || !strings.Contains(text, "prd") {
		t.Errorf("error should list available workflows, got: %s", text)
	}
}

func TestRunWorkflowTool_Handle_MissingRequiredVariable(t *testing.T) {
	root := setupProject(t)
	exec := &executor.Scripted{Chunks: []string{"never emitted"}}
	tool := NewRunWorkflowTool(workflow.NewLoader(), newTestOrchestrator(exec, nil))

	result, err := tool.Handle(context.Background(), makeRequest(map[string]interface{}{
		"workflow":     "create-story",
		"project_root": root,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("expected a tool error for a missing required variable")
	}
	text := getResultText(result)
	if !strings.Contains(text, `"epic"`) || !strings.Contains(text, `"create-story"`) {
		t.Errorf("error should name the variable and workflow, got: %s", text)
	}
	if exec.Instructions != "" {
		t.Error("executor was invoked despite missing required variable")
	}
}

func TestRunWorkflowTool_Handle_ExecutorFailureStillReports(t *testing.T) {
	root := setupProject(t)
	exec := &executor.Scripted{
		Err: errors.New("agent exited with status 3"),
		Hook: func() {
			if err := os.WriteFile(filepath.Join(root, "docs", "notes.md"), []byte("partial\n"), 0o644); err != nil {
				t.Errorf("write artifact: %v", err)
			}
		},
	}
	tool := NewRunWorkflowTool(workflow.NewLoader(), newTestOrchestrator(exec, newTestStore(t)))

	result, err := tool.Handle(context.Background(), makeRequest(map[string]interface{}{
		"workflow":     "prd",
		"project_root": root,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("executor failure should not fail the tool call, got: %s", getResultText(result))
	}

	text := getResultText(result)
	if !strings.Contains(text, "Executor failed") {
		t.Errorf("result should report the executor failure, got:\n%s", text)
	}
	if !strings.Contains(text, "docs/notes.md") {
		t.Errorf("result should list the partial artifact, got:\n%s", text)
	}
}

func TestRunWorkflowTool_Handle_WithoutStoreMarksUnregistered(t *testing.T) {
	root := setupProject(t)
	exec := &executor.Scripted{
		Hook: func() {
			if err := os.WriteFile(filepath.Join(root, "docs", "PRD.md"), []byte("# PRD\n"), 0o644); err != nil {
				t.Errorf("write artifact: %v", err)
			}
		},
	}
	tool := NewRunWorkflowTool(workflow.NewLoader(), newTestOrchestrator(exec, nil))

	result, err := tool.Handle(context.Background(), makeRequest(map[string]interface{}{
		"workflow":     "prd",
		"project_root": root,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}
	text := getResultText(result)
	if !strings.Contains(text, "not registered") {
		t.Errorf("result should flag unregistered artifacts, got:\n%s", text)
	}
}
