// Package workflow loads the declarative definitions of agent work units.
//
// A definition carries the instruction template the responsible agent
// receives and the variable schema used to resolve that template. Projects
// may override the builtin set by placing <name>.yaml files under
// gao/workflows/.
package workflow

import (
	"fmt"
	"strings"
)

// Definition declares one unit of agent work. It is immutable once
// loaded; one definition serves one pipeline invocation.
type Definition struct {
	Name         string                  `json:"name" yaml:"name"`
	Phase        string                  `json:"phase,omitempty" yaml:"phase,omitempty"`
	Agent        string                  `json:"agent,omitempty" yaml:"agent,omitempty"`
	Description  string                  `json:"description,omitempty" yaml:"description,omitempty"`
	Instructions string                  `json:"instructions" yaml:"instructions"`
	Variables    map[string]VariableSpec `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// VariableSpec declares one template variable: an optional default and
// whether resolution must fail when no source supplies a value.
type VariableSpec struct {
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

// Validate ensures the definition is usable by the pipeline. The agent id
// is deliberately not validated here: an unknown agent only matters when
// a produced document is registered, and is reported there per artifact.
func (def Definition) Validate() error {
	if def.Name == "" {
		return fmt.Errorf("workflow: name is required")
	}
	if strings.TrimSpace(def.Instructions) == "" {
		return fmt.Errorf("workflow %s: instructions are required", def.Name)
	}
	return nil
}
