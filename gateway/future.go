package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/rise-and-shine/cmdgw/command"
)

// Future is a single-assignment completion handle for one dispatched command.
// It transitions from pending to completed exactly once; later completions
// are ignored. Continuations registered with ThenRun fire exactly once, after
// completion, in registration order.
type Future struct {
	mu            sync.Mutex
	done          chan struct{}
	completed     bool
	result        command.ResultMessage
	continuations []func()
}

// NewFuture creates a pending Future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Complete resolves the future with the given result. The first call wins
// and reports true; any further call is a no-op reporting false.
// Continuations run on the calling goroutine, in registration order.
func (f *Future) Complete(result command.ResultMessage) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}
	f.completed = true
	f.result = result
	continuations := f.continuations
	f.continuations = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range continuations {
		fn()
	}
	return true
}

// ThenRun registers fn to run once the future completes. If the future is
// already completed, fn runs immediately on the calling goroutine.
func (f *Future) ThenRun(fn func()) {
	f.mu.Lock()
	if !f.completed {
		f.continuations = append(f.continuations, fn)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()

	fn()
}

// AsCallback returns a Callback that resolves this future with the received
// result, for use as a dispatch sink.
func (f *Future) AsCallback() Callback {
	return func(_ context.Context, _ command.Message, result command.ResultMessage) {
		f.Complete(result)
	}
}

// Get blocks until the future completes or the context is done.
func (f *Future) Get(ctx context.Context) (command.ResultMessage, error) {
	select {
	case <-f.done:
		return f.result, nil
	case <-ctx.Done():
		return command.ResultMessage{}, ctx.Err()
	}
}

// GetTimeout blocks until the future completes, the context is done, or the
// timeout elapses. An elapsed timeout yields ErrResultTimeout; the underlying
// dispatch stays in flight.
func (f *Future) GetTimeout(ctx context.Context, timeout time.Duration) (command.ResultMessage, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.result, nil
	case <-ctx.Done():
		return command.ResultMessage{}, ctx.Err()
	case <-timer.C:
		return command.ResultMessage{}, ErrResultTimeout
	}
}
