// Package git provides Git operations for turbocache.
// This file implements the Client which wraps the git CLI through the
// process executor.
package git

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/turbocache/internal/constants"
	"github.com/mrz1836/turbocache/internal/ctxutil"
	tcerrors "github.com/mrz1836/turbocache/internal/errors"
	"github.com/mrz1836/turbocache/internal/process"
)

// CommandObserver receives the subcommand, duration and result of every git
// invocation. Used for metrics.
type CommandObserver func(subcommand string, elapsed time.Duration, err error)

// Client runs git commands sequentially in one working directory.
type Client struct {
	workDir  string
	cmd      string
	exec     process.Executor
	timeout  time.Duration
	logger   zerolog.Logger
	observer CommandObserver

	mu     sync.Mutex
	output string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithExecutable sets the git binary. Defaults to "git" resolved through PATH.
func WithExecutable(cmd string) ClientOption {
	return func(c *Client) {
		if cmd != "" {
			c.cmd = cmd
		}
	}
}

// WithExecutor replaces the process executor. The default executor runs git
// with terminal prompts disabled.
func WithExecutor(exec process.Executor) ClientOption {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithTimeout bounds every git invocation. Zero disables the bound.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for debug output of git commands.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithObserver registers a callback invoked after each git command.
func WithObserver(fn CommandObserver) ClientOption {
	return func(c *Client) {
		c.observer = fn
	}
}

// NewClient creates a Client bound to workDir.
func NewClient(workDir string, opts ...ClientOption) *Client {
	c := &Client{
		workDir: workDir,
		cmd:     constants.DefaultGitExecutable,
		exec:    process.OSExecutor{Env: []string{constants.GitNoPromptEnv}},
		timeout: constants.DefaultGitCommandTimeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Output returns the output of the most recent successful command.
func (c *Client) Output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.output
}

// Execute runs git with args in the working directory and returns its
// combined output. Failures wrap ErrGitOperation and keep the underlying
// *process.Error so callers can inspect the exit code.
func (c *Client) Execute(ctx context.Context, args ...string) (string, error) {
	return c.run(ctx, c.workDir, args...)
}

func (c *Client) run(ctx context.Context, dir string, args ...string) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}
	if len(args) == 0 {
		return "", fmt.Errorf("git arguments: %w", tcerrors.ErrEmptyValue)
	}

	runCtx, cancel := ctxutil.WithOptionalTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	out, err := c.exec.Run(runCtx, c.cmd, args, dir)
	elapsed := time.Since(start)

	if c.observer != nil {
		c.observer(args[0], elapsed, err)
	}

	if err != nil {
		c.logger.Debug().
			Str("git_command", args[0]).
			Dur("duration", elapsed).
			Err(err).
			Msg("git command failed")
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: git %s: %w", tcerrors.ErrGitOperation, args[0], localError(err))
	}

	c.logger.Debug().
		Str("git_command", args[0]).
		Dur("duration", elapsed).
		Msg("git command completed")

	c.mu.Lock()
	c.output = out
	c.mu.Unlock()

	return out, nil
}
