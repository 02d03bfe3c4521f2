// Package pipeline drives one workflow execution end to end: resolve
// variables, render instructions, delegate to the task executor, then
// detect and register the artifacts the execution produced.
//
// The only fatal failure is a missing required variable, reported
// before anything runs. Executor failures and per-artifact
// registration failures are recorded on the Run and never abort it.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/memyselfmike/gao-agile-dev-sub014/internal/artifact"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/config"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/executor"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/lifecycle"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/log"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/template"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/variables"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/workflow"
)

// Request describes one pipeline invocation.
type Request struct {
	Definition  *workflow.Definition
	ProjectRoot string
	Epic        string
	Story       string
	Overrides   map[string]string

	// Allowlist names the tools the executor may use for this run.
	Allowlist []string

	// OnChunk receives streamed executor output as it arrives.
	// A nil OnChunk discards the stream.
	OnChunk func(executor.Chunk)
}

// Run is the record of one pipeline invocation.
type Run struct {
	ID       string
	Workflow string
	Epic     string
	Story    string

	State   State
	History []Transition

	Variables    variables.Mapping
	Instructions string

	// Unresolved lists placeholder names left in the rendered
	// instructions. They are warnings, not errors.
	Unresolved []string

	Artifacts     []string
	Registrations []lifecycle.RegistrationResult

	// ExecErr is the task executor's failure, if any. It is opaque:
	// artifact detection and registration run regardless.
	ExecErr error

	StartedAt  string
	FinishedAt string
}

// Orchestrator sequences pipeline runs. It owns no state of its own;
// every invocation produces a fresh Run.
type Orchestrator struct {
	defaults  config.Defaults
	exec      executor.Executor
	registrar *lifecycle.Registrar
}

func NewOrchestrator(defaults config.Defaults, exec executor.Executor, registrar *lifecycle.Registrar) *Orchestrator {
	return &Orchestrator{
		defaults:  defaults,
		exec:      exec,
		registrar: registrar,
	}
}

// Run executes req's workflow. It returns an error only when a
// required variable has no value from any source; that check happens
// before the filesystem is touched or the executor starts.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Run, error) {
	logger := log.GetLogger()

	run := &Run{
		ID:        uuid.NewString(),
		Workflow:  req.Definition.Name,
		Epic:      req.Epic,
		Story:     req.Story,
		State:     StateIdle,
		StartedAt: timeNow().UTC().Format(time.RFC3339),
	}

	params := variables.CallParams{
		Epic:        req.Epic,
		Story:       req.Story,
		ProjectRoot: req.ProjectRoot,
		Overrides:   req.Overrides,
	}
	mapping, err := variables.Resolve(req.Definition, o.defaults, params, timeNow())
	if err != nil {
		return nil, err
	}
	run.Variables = mapping
	if err := run.advance(StateVariablesResolved); err != nil {
		return run, err
	}
	logger.WithFields(logrus.Fields{
		"run":       run.ID,
		"workflow":  run.Workflow,
		"variables": len(mapping),
	}).Info("variables resolved")

	rendered, unresolved := template.Render(req.Definition.Instructions, mapping)
	run.Instructions = rendered
	run.Unresolved = unresolved
	for _, name := range unresolved {
		logger.WithFields(logrus.Fields{
			"run":         run.ID,
			"workflow":    run.Workflow,
			"placeholder": name,
		}).Warn("unresolved placeholder in instructions")
	}
	if err := run.advance(StateInstructionsRendered); err != nil {
		return run, err
	}
	logger.WithFields(logrus.Fields{
		"run":      run.ID,
		"workflow": run.Workflow,
	}).Info("instructions rendered")

	before := artifact.Take(req.ProjectRoot)
	if err := run.advance(StateExecuting); err != nil {
		return run, err
	}
	logger.WithFields(logrus.Fields{
		"run":      run.ID,
		"workflow": run.Workflow,
		"agent":    req.Definition.Agent,
	}).Info("executing workflow")

	stream, execErr := o.exec.Execute(ctx, rendered, req.Allowlist)
	if execErr != nil {
		run.ExecErr = execErr
		logger.WithError(execErr).WithFields(logrus.Fields{
			"run":      run.ID,
			"workflow": run.Workflow,
		}).Error("executor failed to start")
	} else {
		for chunk := range stream.Chunks() {
			if req.OnChunk != nil {
				req.OnChunk(chunk)
			}
		}
		run.ExecErr = stream.Err()
		if run.ExecErr != nil {
			logger.WithError(run.ExecErr).WithFields(logrus.Fields{
				"run":      run.ID,
				"workflow": run.Workflow,
			}).Warn("executor finished with error")
		}
	}

	// The after snapshot is taken unconditionally, failed and
	// cancelled executions included: partial artifacts stay tracked.
	after := artifact.Take(req.ProjectRoot)
	run.Artifacts = artifact.Detect(before, after)
	if err := run.advance(StateArtifactsDetected); err != nil {
		return run, err
	}
	logger.WithFields(logrus.Fields{
		"run":       run.ID,
		"workflow":  run.Workflow,
		"artifacts": len(run.Artifacts),
	}).Info("artifacts detected")

	run.Registrations = o.registrar.RegisterAll(run.Artifacts, req.Definition, req.Epic, req.Story, mapping)
	if err := run.advance(StateRegistered); err != nil {
		return run, err
	}
	run.FinishedAt = timeNow().UTC().Format(time.RFC3339)

	registered, failed := 0, 0
	for _, res := range run.Registrations {
		if res.Err != nil {
			failed++
		} else {
			registered++
		}
	}
	logger.WithFields(logrus.Fields{
		"run":        run.ID,
		"workflow":   run.Workflow,
		"registered": registered,
		"failed":     failed,
	}).Info("pipeline run complete")

	return run, nil
}
