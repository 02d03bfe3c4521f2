// Package variables resolves the template variables for one workflow
// execution.
//
// Four sources merge into a single mapping, lowest priority first:
// auto-generated commons (date, timestamp, project name/root), the
// installation's global defaults, the workflow's declared defaults, and
// the explicit call parameters. A later source always overwrites an
// earlier one. After the merge, every schema-required variable must hold
// a non-empty value or resolution aborts without a partial result.
package variables

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/memyselfmike/gao-agile-dev-sub014/internal/config"
	"github.com/memyselfmike/gao-agile-dev-sub014/internal/workflow"
)

// Mapping is the resolved name→value set for one execution. It is built
// fresh per run and never persisted; the empty string counts as absent.
type Mapping map[string]string

// Names returns the variable names in sorted order for deterministic
// logging and serialization.
func (m Mapping) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CallParams are the explicit per-invocation parameters, the highest
// priority resolution source. Empty fields are treated as unset.
type CallParams struct {
	Epic        string
	Story       string
	ProjectName string
	ProjectRoot string
	Overrides   map[string]string
}

// MissingRequiredVariableError reports a schema-required variable that no
// source supplied. It is the only error that aborts a pipeline run.
type MissingRequiredVariableError struct {
	Workflow string
	Name     string
}

func (e *MissingRequiredVariableError) Error() string {
	return fmt.Sprintf("workflow %s: required variable %q has no value from any source", e.Workflow, e.Name)
}

// Resolve builds the variable mapping for one execution of def. The
// result is deterministic: identical inputs, including now, always yield
// an identical mapping.
func Resolve(def *workflow.Definition, defaults config.Defaults, params CallParams, now time.Time) (Mapping, error) {
	m := Mapping{}

	// Commons seed the merge so every explicit source can override them.
	m["date"] = now.Format("2006-01-02")
	m["timestamp"] = now.UTC().Format(time.RFC3339)
	set(m, "project_root", params.ProjectRoot)
	projectName := params.ProjectName
	if projectName == "" && params.ProjectRoot != "" {
		projectName = filepath.Base(params.ProjectRoot)
	}
	set(m, "project_name", projectName)

	for name, value := range defaults.All() {
		set(m, name, value)
	}

	for name, spec := range def.Variables {
		set(m, name, spec.Default)
	}

	set(m, "epic", params.Epic)
	set(m, "story", params.Story)
	set(m, "project_name", params.ProjectName)
	set(m, "project_root", params.ProjectRoot)
	for name, value := range params.Overrides {
		set(m, name, value)
	}

	// Validate after the full merge; abort with nothing partial.
	for _, name := range schemaNames(def) {
		if def.Variables[name].Required && m[name] == "" {
			return nil, &MissingRequiredVariableError{Workflow: def.Name, Name: name}
		}
	}
	return m, nil
}

// set assigns only non-empty values, keeping "absent" and "empty"
// indistinguishable across sources.
func set(m Mapping, name, value string) {
	if value != "" {
		m[name] = value
	}
}

// schemaNames returns the declared variable names in sorted order so the
// first reported missing variable is stable.
func schemaNames(def *workflow.Definition) []string {
	names := make([]string, 0, len(def.Variables))
	for name := range def.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
