//go:build unix

package process_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tcerrors "github.com/mrz1836/turbocache/internal/errors"
	"github.com/mrz1836/turbocache/internal/process"
)

func TestRun_Success(t *testing.T) {
	t.Parallel()

	out, err := process.Run(context.Background(), "sh", []string{"-c", "printf hello"}, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestRun_CombinesStdoutAndStderr(t *testing.T) {
	t.Parallel()

	out, err := process.Run(context.Background(), "sh", []string{"-c", "echo one; echo two 1>&2; echo three"}, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", out)
}

func TestRun_UsesWorkingDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out, err := process.Run(context.Background(), "sh", []string{"-c", "ls"}, dir)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRun_NonZeroExit(t *testing.T) {
	t.Parallel()

	t.Run("error carries code and output", func(t *testing.T) {
		t.Parallel()
		_, err := process.Run(context.Background(), "sh", []string{"-c", "echo broken 1>&2; exit 3"}, t.TempDir())
		require.Error(t, err)
		require.ErrorIs(t, err, tcerrors.ErrProcessFailed)

		var perr *process.Error
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 3, perr.Code)
		assert.Equal(t, "broken", perr.Error())
	})

	t.Run("empty output synthesizes a message", func(t *testing.T) {
		t.Parallel()
		_, err := process.Run(context.Background(), "sh", []string{"-c", "exit 2"}, t.TempDir())

		var perr *process.Error
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "Process failed: 2. (command: sh -c exit 2)", perr.Error())
	})
}

func TestRun_StartFailure(t *testing.T) {
	t.Parallel()

	_, err := process.Run(context.Background(), "definitely-not-a-real-binary-xyz", nil, t.TempDir())
	require.ErrorIs(t, err, tcerrors.ErrProcessFailed)

	var perr *process.Error
	assert.False(t, errors.As(err, &perr), "start failures have no exit code")
}

func TestRun_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := process.Run(ctx, "sh", []string{"-c", "sleep 5"}, t.TempDir())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOSExecutor(t *testing.T) {
	t.Parallel()

	var exec process.Executor = process.OSExecutor{}
	out, err := exec.Run(context.Background(), "sh", []string{"-c", "printf ok"}, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestRunEnv_AddsToInheritedEnvironment(t *testing.T) {
	t.Setenv("TURBOCACHE_INHERITED", "parent")

	out, err := process.RunEnv(context.Background(), "sh",
		[]string{"-c", "printf '%s %s' \"$TURBOCACHE_INHERITED\" \"$TURBOCACHE_EXTRA\""},
		t.TempDir(), []string{"TURBOCACHE_EXTRA=child"})
	require.NoError(t, err)
	assert.Equal(t, "parent child", out)
}

func TestOSExecutor_Env(t *testing.T) {
	exec := process.OSExecutor{Env: []string{"GIT_TERMINAL_PROMPT=0"}}

	out, err := exec.Run(context.Background(), "sh", []string{"-c", "printf \"$GIT_TERMINAL_PROMPT\""}, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "0", out)
}
