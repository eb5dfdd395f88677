package gateway_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/cmdgw/command"
	"github.com/rise-and-shine/cmdgw/gateway"
	"github.com/rise-and-shine/cmdgw/logger"
	"github.com/rise-and-shine/cmdgw/meta"
)

// stubGateway is a minimal Gateway whose outcome is fixed up front.
type stubGateway struct {
	result  command.ResultMessage
	lastCtx context.Context
}

func (g *stubGateway) Send(ctx context.Context, cmd any, callback gateway.Callback) {
	g.lastCtx = ctx
	if callback != nil {
		callback(ctx, command.AsMessage(cmd), g.result)
	}
}

func (g *stubGateway) SendAndWait(ctx context.Context, cmd any) (any, error) {
	g.lastCtx = ctx
	if g.result.IsExceptional() {
		return nil, g.result.Err()
	}
	return g.result.Payload(), nil
}

func (g *stubGateway) SendAndWaitTimeout(ctx context.Context, cmd any, _ time.Duration) (any, error) {
	return g.SendAndWait(ctx, cmd)
}

// recordingAlertProvider captures SendError calls for assertions.
type recordingAlertProvider struct {
	mu    sync.Mutex
	calls []alertCall
}

type alertCall struct {
	code      string
	operation string
	details   map[string]string
}

func (p *recordingAlertProvider) SendError(
	_ context.Context,
	errCode, _, operation string,
	details map[string]string,
) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, alertCall{code: errCode, operation: operation, details: details})
	return nil
}

func (p *recordingAlertProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *recordingAlertProvider) lastCall() alertCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[len(p.calls)-1]
}

func TestMetaGateway(t *testing.T) {
	t.Run("injects dispatch metadata into context", func(t *testing.T) {
		stub := &stubGateway{result: command.NewResultMessage(nil)}
		gw := gateway.NewMetaGateway(stub, "order-service", "v1.2.3")

		_, err := gw.SendAndWait(t.Context(), createOrder{ID: "1"})
		require.NoError(t, err)

		data := meta.ExtractMetaFromContext(stub.lastCtx)
		assert.Equal(t, "createOrder", data[meta.CommandName])
		assert.Equal(t, "order-service", data[meta.ServiceName])
		assert.Equal(t, "v1.2.3", data[meta.ServiceVersion])
		assert.NotEmpty(t, data[meta.TraceID])
	})

	t.Run("generates a manual trace id without an active span", func(t *testing.T) {
		stub := &stubGateway{result: command.NewResultMessage(nil)}
		gw := gateway.NewMetaGateway(stub, "order-service", "v1.2.3")

		gw.Send(t.Context(), createOrder{ID: "1"}, nil)

		data := meta.ExtractMetaFromContext(stub.lastCtx)
		assert.Contains(t, data[meta.TraceID], "man-")
	})
}

func TestLoggingGateway(t *testing.T) {
	t.Run("passes results through untouched", func(t *testing.T) {
		stub := &stubGateway{result: command.NewResultMessage("payload")}
		gw := gateway.NewLoggingGateway(stub, logger.NewNop())

		payload, err := gw.SendAndWait(t.Context(), createOrder{ID: "1"})

		require.NoError(t, err)
		assert.Equal(t, "payload", payload)
	})

	t.Run("passes failures through untouched", func(t *testing.T) {
		cause := errx.New("handler rejected command", errx.WithCode("REJECTED"))
		stub := &stubGateway{result: command.NewExceptionalResult(cause)}
		gw := gateway.NewLoggingGateway(stub, logger.NewNop())

		_, err := gw.SendAndWaitTimeout(t.Context(), createOrder{ID: "1"}, time.Second)

		assert.Equal(t, cause, err)
	})

	t.Run("send invokes the original callback", func(t *testing.T) {
		stub := &stubGateway{result: command.NewResultMessage("ok")}
		gw := gateway.NewLoggingGateway(stub, logger.NewNop())

		var got any
		gw.Send(t.Context(), createOrder{ID: "1"}, func(_ context.Context, _ command.Message, result command.ResultMessage) {
			got = result.Payload()
		})

		assert.Equal(t, "ok", got)
	})
}

func TestAlertingGateway(t *testing.T) {
	t.Run("reports failures without altering them", func(t *testing.T) {
		cause := errx.New("inventory unavailable", errx.WithCode("INVENTORY_UNAVAILABLE"))
		stub := &stubGateway{result: command.NewExceptionalResult(cause)}
		provider := &recordingAlertProvider{}
		gw := gateway.NewAlertingGateway(stub, logger.NewNop(), provider)

		ctx := meta.InjectMetaToContext(t.Context(), map[meta.ContextKey]string{
			meta.TraceID: "trace-1",
		})

		_, err := gw.SendAndWait(ctx, createOrder{ID: "1"})
		assert.Equal(t, cause, err)

		require.Eventually(t, func() bool {
			return provider.callCount() == 1
		}, time.Second, time.Millisecond)

		call := provider.lastCall()
		assert.Equal(t, "INVENTORY_UNAVAILABLE", call.code)
		assert.Equal(t, "command: createOrder", call.operation)
		assert.Equal(t, "trace-1", call.details["trace_id"])
	})

	t.Run("stays silent on success", func(t *testing.T) {
		stub := &stubGateway{result: command.NewResultMessage("ok")}
		provider := &recordingAlertProvider{}
		gw := gateway.NewAlertingGateway(stub, logger.NewNop(), provider)

		payload, err := gw.SendAndWait(t.Context(), createOrder{ID: "1"})

		require.NoError(t, err)
		assert.Equal(t, "ok", payload)

		time.Sleep(20 * time.Millisecond)
		assert.Zero(t, provider.callCount())
	})

	t.Run("send reports exceptional callback results", func(t *testing.T) {
		cause := errx.New("boom", errx.WithCode("BOOM"))
		stub := &stubGateway{result: command.NewExceptionalResult(cause)}
		provider := &recordingAlertProvider{}
		gw := gateway.NewAlertingGateway(stub, logger.NewNop(), provider)

		var got error
		gw.Send(t.Context(), createOrder{ID: "1"}, func(_ context.Context, _ command.Message, result command.ResultMessage) {
			got = result.Err()
		})

		assert.Equal(t, cause, got)
		require.Eventually(t, func() bool {
			return provider.callCount() == 1
		}, time.Second, time.Millisecond)
	})
}
