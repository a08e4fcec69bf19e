package cli

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrz1836/turbocache/internal/errors"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"invalid storage config", fmt.Errorf("invalid configuration: %w", errors.ErrConfigInvalidStorage), ExitInvalidInput},
		{"unknown provider", errors.ErrUnknownStorageProvider, ExitInvalidInput},
		{"missing tokens", errors.ErrConfigInvalidServer, ExitInvalidInput},
		{"unknown flag", stderrors.New("unknown flag: --nope"), ExitInvalidInput},
		{"sync failure", errors.ErrSyncFailed, ExitError},
		{"generic", stderrors.New("boom"), ExitError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCodeForError(tc.err))
		})
	}
}
