// Package config loads the installation-wide variable defaults and
// locates the project root.
//
// Defaults live in gao/config.yaml under the project root: a flat
// key→value mapping merged into every variable resolution at the lowest
// explicit priority. The file is optional — a missing file means empty
// defaults, not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/memyselfmike/gao-agile-dev-sub014/internal/log"
)

const (
	// FrameworkDir is the in-project directory holding gao configuration
	// and workflow definitions.
	FrameworkDir = "gao"

	// DefaultsFile is the global defaults file name inside FrameworkDir.
	DefaultsFile = "config.yaml"
)

// Defaults is the read-only set of installation-wide variable defaults.
// It is constructed once at process start and injected where needed;
// the zero value is an empty set.
type Defaults struct {
	values map[string]string
}

// NewDefaults builds a Defaults from an explicit mapping. Tests and
// callers that bypass the file use this; the input map is copied.
func NewDefaults(values map[string]string) Defaults {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Defaults{values: copied}
}

// Lookup returns the default value for name and whether it exists.
func (d Defaults) Lookup(name string) (string, bool) {
	v, ok := d.values[name]
	return v, ok
}

// All returns a copy of the full mapping for callers that merge every
// default, such as the variable resolver.
func (d Defaults) All() map[string]string {
	copied := make(map[string]string, len(d.values))
	for k, v := range d.values {
		copied[k] = v
	}
	return copied
}

// Len returns the number of configured defaults.
func (d Defaults) Len() int {
	return len(d.values)
}

// LoadDefaults reads gao/config.yaml under projectRoot. A missing file
// yields empty defaults and a warning log, never an error. A file that
// exists but cannot be read or parsed is an error.
func LoadDefaults(projectRoot string) (Defaults, error) {
	path := filepath.Join(projectRoot, FrameworkDir, DefaultsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.GetLogger().WithField("path", path).
				Warn("global defaults file not found, using empty defaults")
			return Defaults{}, nil
		}
		return Defaults{}, fmt.Errorf("reading defaults file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Defaults{}, fmt.Errorf("parsing defaults file %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for key, value := range raw {
		values[key] = stringify(value)
	}
	return Defaults{values: values}, nil
}

// stringify renders a scalar YAML value as the string the resolver will
// substitute. Nested structures are not supported in the defaults file.
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FindProjectRoot walks up from startDir looking for an existing gao/
// directory. If none is found it returns startDir — the caller decides
// what to do with an uninitialized project.
func FindProjectRoot(startDir string) (string, error) {
	start, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving start directory: %w", err)
	}

	current := start
	for {
		candidate := filepath.Join(current, FrameworkDir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			// Reached filesystem root without finding gao/.
			return start, nil
		}
		current = parent
	}
}
