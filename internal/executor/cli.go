package executor

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultCommand is the agent binary used when GAO_AGENT_CMD is unset.
const DefaultCommand = "claude"

// stderrCap bounds how much of the agent's stderr is kept for error
// context.
const stderrCap = 8 * 1024

// CLI executes instructions by spawning an agent command-line process.
// Instructions arrive on the process's stdin; each stdout line becomes
// one chunk.
type CLI struct {
	Command   string   // agent binary
	ExtraArgs []string // fixed arguments placed before the allowlist flag
	Dir       string   // working directory; empty inherits the process's
}

// NewCLI builds a CLI executor. An empty command falls back to
// DefaultCommand.
func NewCLI(command string, extraArgs ...string) *CLI {
	if command == "" {
		command = DefaultCommand
	}
	return &CLI{Command: command, ExtraArgs: extraArgs}
}

// Execute spawns the agent process. A returned error means the process
// never started; anything after that, including cancellation and
// non-zero exits, is reported through the stream.
func (c *CLI) Execute(ctx context.Context, instructions string, allowlist []string) (*Stream, error) {
	args := append([]string(nil), c.ExtraArgs...)
	if len(allowlist) > 0 {
		args = append(args, "--allowed-tools", strings.Join(allowlist, ","))
	}

	cmd := exec.CommandContext(ctx, c.Command, args...)
	cmd.Dir = c.Dir
	cmd.Stdin = strings.NewReader(instructions)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("executor: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("executor: stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("executor: start %s: %w", c.Command, err)
	}

	stream := newStream(64)
	var stderrTail bytes.Buffer

	go func() {
		g := new(errgroup.Group)
		g.Go(func() error {
			scanner := bufio.NewScanner(stdout)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for scanner.Scan() {
				stream.emit(Chunk{Text: scanner.Text()})
			}
			return scanner.Err()
		})
		g.Go(func() error {
			// Keep the head for error context, drain the rest so the
			// child never blocks on a full pipe.
			if _, err := io.Copy(&stderrTail, io.LimitReader(stderr, stderrCap)); err != nil {
				return err
			}
			_, err := io.Copy(io.Discard, stderr)
			return err
		})

		pumpErr := g.Wait()
		waitErr := cmd.Wait()

		switch {
		case waitErr != nil:
			if msg := strings.TrimSpace(stderrTail.String()); msg != "" {
				stream.finish(fmt.Errorf("executor: %s: %w: %s", c.Command, waitErr, msg))
			} else {
				stream.finish(fmt.Errorf("executor: %s: %w", c.Command, waitErr))
			}
		case pumpErr != nil:
			stream.finish(fmt.Errorf("executor: read output: %w", pumpErr))
		default:
			stream.finish(nil)
		}
	}()

	return stream, nil
}
