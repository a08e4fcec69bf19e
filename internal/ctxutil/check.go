// Package ctxutil provides context utility functions.
package ctxutil

import (
	"context"
	"time"
)

// Canceled returns the context error if ctx is done (Canceled or
// DeadlineExceeded), nil otherwise. Used at the top of blocking operations.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}

// WithOptionalTimeout bounds ctx by d when d is positive. A zero or negative
// d only adds cancellation.
func WithOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
