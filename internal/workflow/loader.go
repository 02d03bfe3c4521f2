package workflow

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/memyselfmike/gao-agile-dev-sub014/internal/config"
)

// WorkflowsDir is the in-project directory for definition overrides,
// relative to the gao framework directory.
const WorkflowsDir = "workflows"

//go:embed definitions/*.yaml
var builtin embed.FS

const builtinDir = "definitions"

// ParseDefinition decodes a workflow definition from YAML bytes.
func ParseDefinition(data []byte) (*Definition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("workflow: definition payload is empty")
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("workflow: decode definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Loader resolves workflow definitions by name. Project files under
// gao/workflows/ take precedence over the builtin set baked into the
// binary.
type Loader struct{}

// NewLoader creates a workflow Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load returns the definition named name for the given project root.
func (l *Loader) Load(projectRoot, name string) (*Definition, error) {
	filePath := filepath.Join(projectRoot, config.FrameworkDir, WorkflowsDir, name+".yaml")
	data, err := os.ReadFile(filePath)
	if err == nil {
		def, parseErr := ParseDefinition(data)
		if parseErr != nil {
			return nil, fmt.Errorf("workflow: %s: %w", filePath, parseErr)
		}
		return def, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("workflow: read %s: %w", filePath, err)
	}

	data, err = builtin.ReadFile(path.Join(builtinDir, name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("workflow: unknown workflow %q", name)
	}
	def, parseErr := ParseDefinition(data)
	if parseErr != nil {
		return nil, fmt.Errorf("workflow: builtin %s: %w", name, parseErr)
	}
	return def, nil
}

// List returns the names of every available definition: the builtin set
// plus any project overrides, deduplicated and sorted.
func (l *Loader) List(projectRoot string) ([]string, error) {
	seen := map[string]struct{}{}

	entries, err := builtin.ReadDir(builtinDir)
	if err != nil {
		return nil, fmt.Errorf("workflow: list builtin definitions: %w", err)
	}
	for _, entry := range entries {
		seen[strings.TrimSuffix(entry.Name(), ".yaml")] = struct{}{}
	}

	projectDir := filepath.Join(projectRoot, config.FrameworkDir, WorkflowsDir)
	files, err := os.ReadDir(projectDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("workflow: list %s: %w", projectDir, err)
	}
	for _, entry := range files {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		seen[strings.TrimSuffix(entry.Name(), ".yaml")] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
