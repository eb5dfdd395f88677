package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/cmdgw/command"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "cmdgw/gateway"

const (
	operationSend        = "sendCommandMessage"
	operationSendAndWait = "sendCommandMessageAndWait"
)

// TracingGateway decorates a Dispatcher with span lifecycle management. Each
// dispatched command gets exactly one client span, carrying the command name
// and metadata as attributes. The span is ended exactly once, when completion
// is observed, whether that happens on the same call stack or on another
// goroutine.
//
// The caller's span context is never visible to the user callback: the
// callback is invoked with the dispatch-time context, whose active span is
// the one the caller had, not the child created here.
type TracingGateway struct {
	tracer trace.Tracer
	target Dispatcher
}

// NewTracingGateway creates a TracingGateway over the given dispatch target.
// The target is a hard requirement; a nil target fails construction.
// The tracer is obtained from the global otel tracer provider.
func NewTracingGateway(target Dispatcher) (*TracingGateway, error) {
	if target == nil {
		return nil, errx.New(
			"the dispatcher is a hard requirement and must be provided",
			errx.WithCode(CodeInvalidConfig),
			errx.WithType(errx.T_Validation),
		)
	}

	return &TracingGateway{
		tracer: otel.Tracer(tracerName),
		target: target,
	}, nil
}

// Send dispatches the command and returns once dispatch has been initiated.
//
// The wrapped callback re-enters the caller's context, records the
// resultReceived event, invokes the user callback, records
// afterCallbackInvocation and resolves the completion future. The span ends
// only after both the dispatchComplete event and completion have occurred.
func (g *TracingGateway) Send(ctx context.Context, cmd any, callback Callback) {
	msg := command.AsMessage(cmd)

	g.sendWithSpan(ctx, operationSend, msg, func(spanCtx context.Context, span trace.Span) {
		resultReceived := NewFuture()

		g.target.Dispatch(spanCtx, msg, func(_ context.Context, msg command.Message, result command.ResultMessage) {
			defer resultReceived.Complete(result)

			span.AddEvent("resultReceived")
			if callback != nil {
				callback(ctx, msg, result)
			}
			span.AddEvent("afterCallbackInvocation")
		})

		span.AddEvent("dispatchComplete")
		resultReceived.ThenRun(func() { span.End() })
	})
}

// SendAndWait dispatches the command and blocks until the result arrives or
// the context is done.
func (g *TracingGateway) SendAndWait(ctx context.Context, cmd any) (any, error) {
	return g.doSendAndExtract(ctx, cmd, func(f *Future) (command.ResultMessage, error) {
		return f.Get(ctx)
	})
}

// SendAndWaitTimeout dispatches the command and blocks until the result
// arrives, the context is done, or the timeout elapses. A timeout surfaces
// ErrResultTimeout and leaves the dispatch in flight; the span still ends
// when (if ever) completion arrives.
func (g *TracingGateway) SendAndWaitTimeout(
	ctx context.Context,
	cmd any,
	timeout time.Duration,
) (any, error) {
	return g.doSendAndExtract(ctx, cmd, func(f *Future) (command.ResultMessage, error) {
		return f.GetTimeout(ctx, timeout)
	})
}

func (g *TracingGateway) doSendAndExtract(
	ctx context.Context,
	cmd any,
	extract func(*Future) (command.ResultMessage, error),
) (any, error) {
	fut := NewFuture()

	g.sendAndNotify(ctx, cmd, fut)

	result, err := extract(fut)
	if err != nil {
		return nil, err
	}

	if result.IsExceptional() {
		return nil, translateResultError(result.Err())
	}
	return result.Payload(), nil
}

func (g *TracingGateway) sendAndNotify(ctx context.Context, cmd any, fut *Future) {
	msg := command.AsMessage(cmd)

	g.sendWithSpan(ctx, operationSendAndWait, msg, func(spanCtx context.Context, span trace.Span) {
		g.target.Dispatch(spanCtx, msg, fut.AsCallback())
		fut.ThenRun(func() { span.AddEvent("resultReceived") })

		span.AddEvent("dispatchComplete")
		fut.ThenRun(func() { span.End() })
	})
}

// sendWithSpan starts the child span with message attributes set before the
// dispatch is issued and hands it to consume. Ownership of span.End is
// consume's: it must defer ending to its completion continuation. The
// caller's own span context is untouched because contexts are immutable.
func (g *TracingGateway) sendWithSpan(
	ctx context.Context,
	operation string,
	msg command.Message,
	consume func(ctx context.Context, span trace.Span),
) {
	spanCtx, span := g.tracer.Start(ctx, operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(messageAttributes(msg)...),
	)

	consume(spanCtx, span)
}

// messageAttributes converts the command name and metadata into span
// attributes.
func messageAttributes(msg command.Message) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(msg.Metadata())+1)
	attrs = append(attrs, attribute.String("command.name", msg.Name()))
	for k, v := range msg.Metadata() {
		attrs = append(attrs, attribute.String("command.metadata."+k, v))
	}
	return attrs
}

// translateResultError maps the cause of an exceptional dispatch result to
// the failure surfaced to the caller. Context faults and failures that
// already are caller-facing types pass through unchanged; anything else is
// wrapped in an ExecutionError so the original cause stays reachable by
// unwrapping.
func translateResultError(cause error) error {
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return cause
	}

	var e errx.ErrorX
	if errors.As(cause, &e) {
		return cause
	}

	var ex *ExecutionError
	if errors.As(cause, &ex) {
		return cause
	}

	return newExecutionError(cause)
}
