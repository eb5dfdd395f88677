// Package gateway provides a command gateway that decorates an external
// dispatch target with distributed tracing, logging, alerting and retry
// behavior.
//
// The gateway does not route or execute commands itself. It normalizes
// payloads into command messages, manages the span lifecycle around each
// dispatch and hands the message to a Dispatcher, which may complete the
// callback synchronously on the same call stack or asynchronously from an
// arbitrary goroutine. Decorators are composable: each one wraps a Gateway or
// a Dispatcher and adds a single cross-cutting concern.
package gateway

import (
	"context"
	"time"

	"github.com/rise-and-shine/cmdgw/command"
)

// Callback receives the outcome of a dispatched command. The context is the
// caller's dispatch-time context, restored regardless of which goroutine
// observes completion.
type Callback func(ctx context.Context, msg command.Message, result command.ResultMessage)

// Dispatcher is the underlying dispatch mechanism the gateway wraps.
//
// Dispatch hands the message to the target and returns once dispatch has been
// initiated. The callback may be invoked before Dispatch returns, from
// another goroutine at any later point, or never. A nil callback means the
// caller is not interested in the outcome.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg command.Message, callback Callback)
}

// Gateway is the dispatch contract exposed to callers.
type Gateway interface {
	// Send dispatches the command and returns without waiting for the
	// outcome. The callback is invoked once the command completes.
	Send(ctx context.Context, cmd any, callback Callback)

	// SendAndWait dispatches the command and blocks until it completes,
	// returning the result payload or the translated failure.
	SendAndWait(ctx context.Context, cmd any) (any, error)

	// SendAndWaitTimeout behaves like SendAndWait but gives up waiting
	// after the given timeout. The in-flight dispatch is not cancelled.
	SendAndWaitTimeout(ctx context.Context, cmd any, timeout time.Duration) (any, error)
}
