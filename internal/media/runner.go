package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// commandRunner abstracts process execution so tests can fake ffmpeg
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, err error)
}

// execRunner runs commands via os/exec
type execRunner struct{}

// Run executes one command and returns its stdout. Stderr is folded into the error.
func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), fmt.Errorf("%s exited with code %d: %s", name, exitErr.ExitCode(), lastLine(stderr.String()))
		}
		return stdout.String(), fmt.Errorf("failed to run %s: %w", name, err)
	}
	return stdout.String(), nil
}

// lastLine keeps the tail of ffmpeg's stderr, which carries the actual failure
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
