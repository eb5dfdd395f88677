package gateway

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rise-and-shine/cmdgw/command"
)

// RetryConfig defines configuration options for the retry dispatcher.
type RetryConfig struct {
	// Disabled, if true, passes every dispatch straight through.
	Disabled bool `yaml:"disabled" default:"false"`

	// Attempts is the maximum number of dispatch attempts per command.
	// Default: 3.
	Attempts uint `yaml:"attempts"`

	// Delay is the base delay between attempts. Backoff and jitter are
	// applied on top of it. Default: 100ms.
	Delay time.Duration `yaml:"delay"`
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.Attempts == 0 {
		c.Attempts = 3
	}
	if c.Delay <= 0 {
		c.Delay = 100 * time.Millisecond
	}
	return c
}

// RetryDispatcher decorates a Dispatcher with retries on exceptional
// completion, with backoff and jitter. Retrying is a dispatch-target concern:
// the tracing gateway above it sees a single dispatch whose completion is the
// outcome of the final attempt.
//
// Every dispatch through a RetryDispatcher completes asynchronously, even
// when the wrapped target completes synchronously.
type RetryDispatcher struct {
	cfg  RetryConfig
	next Dispatcher
}

// NewRetryDispatcher creates a RetryDispatcher over the next dispatcher.
func NewRetryDispatcher(next Dispatcher, cfg RetryConfig) *RetryDispatcher {
	return &RetryDispatcher{cfg: cfg.withDefaults(), next: next}
}

func (d *RetryDispatcher) Dispatch(ctx context.Context, msg command.Message, callback Callback) {
	if d.cfg.Disabled {
		d.next.Dispatch(ctx, msg, callback)
		return
	}

	go func() {
		var last command.ResultMessage

		err := retry.Do(
			func() error {
				fut := NewFuture()
				d.next.Dispatch(ctx, msg, fut.AsCallback())

				result, err := fut.Get(ctx)
				if err != nil {
					// context is gone; further attempts are pointless
					return retry.Unrecoverable(err)
				}

				last = result
				return result.Err()
			},
			retry.Attempts(d.cfg.Attempts),
			retry.Delay(d.cfg.Delay),
			retry.MaxJitter(d.cfg.Delay/10+time.Millisecond),
			retry.Context(ctx),
			retry.LastErrorOnly(true),
		)

		if callback == nil {
			return
		}

		if err != nil {
			callback(ctx, msg, command.NewExceptionalResult(err))
			return
		}
		callback(ctx, msg, last)
	}()
}
