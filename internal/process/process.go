// Package process runs external commands for turbocache.
//
// Commands run without stdin. Stdout and stderr are captured into a single
// buffer so the combined output keeps each stream's own ordering.
//
// Import rules:
//   - CAN import: internal/errors, std lib
//   - MUST NOT import: other internal packages
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	tcerrors "github.com/mrz1836/turbocache/internal/errors"
)

// Executor runs one external command to completion.
// The git client depends on this interface so tests can record invocations.
type Executor interface {
	Run(ctx context.Context, exe string, args []string, dir string) (string, error)
}

// Error is returned when a command exits with a non-zero status.
type Error struct {
	// Code is the process exit code.
	Code int
	// Output is the combined stdout and stderr of the process.
	Output string
	// Command is the executable followed by its arguments.
	Command []string
}

// Error returns the captured output, or a synthesized message when the
// process printed nothing.
func (e *Error) Error() string {
	if out := strings.TrimSpace(e.Output); out != "" {
		return out
	}
	return fmt.Sprintf("Process failed: %d. (command: %s)", e.Code, strings.Join(e.Command, " "))
}

// Is reports whether target is errors.ErrProcessFailed.
func (e *Error) Is(target error) bool {
	return target == tcerrors.ErrProcessFailed
}

// OSExecutor runs commands with os/exec.
type OSExecutor struct {
	// Env entries ("KEY=value") are added to the inherited environment.
	Env []string
}

// Run implements Executor.
func (e OSExecutor) Run(ctx context.Context, exe string, args []string, dir string) (string, error) {
	return RunEnv(ctx, exe, args, dir, e.Env)
}

// Run executes exe with args in dir and returns its combined output.
//
// A non-zero exit yields *Error. If ctx ends first the context error is
// returned instead, since the exit status of a killed process says nothing
// about the command itself.
func Run(ctx context.Context, exe string, args []string, dir string) (string, error) {
	return RunEnv(ctx, exe, args, dir, nil)
}

// RunEnv is Run with extra environment entries added to the inherited
// environment. Later entries win over inherited ones with the same key.
func RunEnv(ctx context.Context, exe string, args []string, dir string, env []string) (string, error) {
	cmd := exec.CommandContext(ctx, exe, args...) //#nosec G204 -- executable and args are constructed internally
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err == nil {
		return out.String(), nil
	}

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return "", &Error{
			Code:    exitErr.ExitCode(),
			Output:  out.String(),
			Command: append([]string{exe}, args...),
		}
	}

	return "", fmt.Errorf("%w: starting %s: %w", tcerrors.ErrProcessFailed, exe, err)
}
