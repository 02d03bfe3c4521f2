// Package tools implements the MCP tool handlers for the workflow
// pipeline.
//
// Each tool receives its dependencies via its struct and exposes a
// Definition for registration plus a Handle compatible with mcp-go's
// CallToolRequest signature. Invalid input produces a tool result
// error; internal failures propagate as wrapped Go errors.
package tools

import (
	"fmt"
	"os"

	"github.com/memyselfmike/gao-agile-dev-sub014/internal/config"
)

// resolveProjectRoot picks the project root for a tool call. An
// explicit param wins; otherwise walk up from the working directory
// looking for a gao/ directory, falling back to cwd.
func resolveProjectRoot(param string) (string, error) {
	if param != "" {
		info, err := os.Stat(param)
		if err != nil {
			return "", fmt.Errorf("tools: project root %s: %w", param, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("tools: project root %s is not a directory", param)
		}
		return param, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("tools: getting working directory: %w", err)
	}
	root, err := config.FindProjectRoot(cwd)
	if err != nil {
		return "", fmt.Errorf("tools: finding project root: %w", err)
	}
	return root, nil
}
