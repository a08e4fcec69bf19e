// Package flock provides cross-platform file locking utilities.
//
// Exclusive and Unlock are thin non-blocking wrappers over flock(2) and
// LockFileEx. Acquire layers a polling loop with a deadline on top of them so
// that independent server processes sharing one cache directory take turns.
//
// Usage:
//
//	lock, err := flock.Acquire(ctx, dir+".lock", 2*time.Minute)
//	if err != nil {
//	    return err // errors.ErrLockTimeout when the deadline passes
//	}
//	defer lock.Release()
package flock
