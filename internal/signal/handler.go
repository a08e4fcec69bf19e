// Package signal turns SIGINT and SIGTERM into context cancellation for the
// serve command. The first signal starts a graceful shutdown; a second one
// asks for an immediate exit.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages (to avoid circular dependencies)
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler cancels its context when SIGINT or SIGTERM is received.
type Handler struct {
	ctx         context.Context //nolint:containedctx // handler owns the context lifecycle
	cancel      context.CancelFunc
	interrupted chan struct{}
	forced      chan struct{}
	done        chan struct{}
	sigChan     chan os.Signal

	mu       sync.Mutex
	received os.Signal
	count    int
	stopOnce sync.Once
}

// NewHandler starts listening for SIGINT and SIGTERM.
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	go func() { <-h.Forced(); os.Exit(1) }()
//	err := srv.ListenAndServe(h.Context(), addr)
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		forced:      make(chan struct{}),
		done:        make(chan struct{}),
		// Buffered so signal.Notify never drops a signal while we are busy.
		sigChan: make(chan os.Signal, 1),
	}

	signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context is canceled on the first signal or when Stop is called.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted closes on the first signal.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Forced closes on the second signal.
func (h *Handler) Forced() <-chan struct{} {
	return h.forced
}

// Received returns the first signal, or nil if none arrived.
func (h *Handler) Received() os.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.received
}

// Stop stops signal delivery and cancels the context. Safe to call twice.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
		h.cancel()
	})
}

func (h *Handler) handleSignal(sig os.Signal) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.count++
	switch h.count {
	case 1:
		h.received = sig
		h.cancel()
		close(h.interrupted)
	case 2:
		close(h.forced)
	}
}

// listen keeps draining sigChan after the first signal so a second one can
// be observed as a forced exit.
func (h *Handler) listen() {
	for {
		select {
		case <-h.done:
			return
		case sig := <-h.sigChan:
			h.handleSignal(sig)
		}
	}
}
