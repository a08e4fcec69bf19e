package errors

import "fmt"

// Wrap adds context to errors at package boundaries.
// It returns nil if err is nil, allowing for safe inline usage:
//
//	if err := provider.Exists(ctx, p); err != nil {
//	    return errors.Wrap(err, "failed to check artifact")
//	}
//
// Callers can still check for sentinel errors through the wrap:
//
//	if errors.Is(err, errors.ErrSyncFailed) {
//	    // remote rejected the update
//	}
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf adds formatted context to errors at package boundaries.
// It returns nil if err is nil.
//
//	return errors.Wrapf(err, "failed to write artifact %s", artifactPath)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, err)
}
