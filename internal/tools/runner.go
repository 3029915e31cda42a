package tools

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gwlsn/webpanim/internal/logger"
)

// Runner executes an external tool and returns its combined stdout+stderr.
// A non-nil error is always a *ToolError carrying whatever output was captured.
type Runner interface {
	CombinedOutput(ctx context.Context, path string, args ...string) ([]byte, error)
}

// ExecRunner runs tools with os/exec.
type ExecRunner struct{}

// CombinedOutput runs path with args and blocks until it exits.
func (ExecRunner) CombinedOutput(ctx context.Context, path string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)

	logger.Debug("Running tool", "tool", filepath.Base(path), "args", len(args))

	output, err := cmd.CombinedOutput()
	if err != nil {
		// A killed process reports "signal: killed"; surface the cancellation instead
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return output, newToolError(path, output, err)
	}
	return output, nil
}

// ToolError represents a tool that failed to launch or exited non-zero.
type ToolError struct {
	Tool     string
	ExitCode int    // -1 if the process never started or was killed
	Output   string // Combined stdout+stderr
	Err      error
}

func newToolError(path string, output []byte, err error) *ToolError {
	te := &ToolError{
		Tool:     filepath.Base(path),
		ExitCode: -1,
		Output:   string(output),
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		te.ExitCode = exitErr.ExitCode()
	}
	return te
}

func (e *ToolError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("%s exited with status %d%s", e.Tool, e.ExitCode, e.tail())
	}
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// ExitStatus returns the status the program should exit with when this
// failure is terminal. Launch failures map to 1.
func (e *ToolError) ExitStatus() int {
	if e.ExitCode > 0 {
		return e.ExitCode
	}
	return 1
}

// tail returns the last line of output for the error message.
func (e *ToolError) tail() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return ""
	}
	lines := strings.Split(out, "\n")
	return ": " + strings.TrimSpace(lines[len(lines)-1])
}
