// gao: agile workflow MCP server.
//
// Connects any MCP-capable AI coding tool (Claude Code, Cursor, VS
// Code Copilot, Gemini CLI) to a team of agile workflows: PRD,
// architecture, epics, stories, and QA reviews, each executed by an
// agent CLI and registered in the project's document store.
//
// Usage:
//
//	gao serve      # Start MCP server (stdio transport)
//	gao version    # Print the version
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	gaoserver "github.com/memyselfmike/gao-agile-dev-sub014/internal/server"
)

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("gao v%s\n", gaoserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present. Absence is the normal case.
	_ = godotenv.Load()

	s, cleanup, err := gaoserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Close the document store on interrupt too. ServeStdio otherwise
	// runs until stdin closes.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cleanup()
		os.Exit(0)
	}()

	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `gao v%s — Agile Workflow MCP Server

Usage:
  gao serve      Start the MCP server (stdio transport)
  gao version    Print the version

Environment:
  GAO_AGENT_CMD  Agent CLI the workflows delegate to (default: claude)
  GAO_DATA_DIR   Document store directory (default: ~/.gao)
  LOG_LEVEL      Log verbosity on stderr (default: info)

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "gao": {
        "command": "gao",
        "args": ["serve"]
      }
    }
  }
`, gaoserver.Version)
}
