package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rise-and-shine/cmdgw/command"
	"github.com/rise-and-shine/cmdgw/meta"
	"go.opentelemetry.io/otel/trace"
)

// MetaGateway injects dispatch metadata into the context before handing the
// command to the next gateway, so downstream decorators and handlers can
// enrich logs and alerts with it.
type MetaGateway struct {
	serviceName    string
	serviceVersion string
	next           Gateway
}

// NewMetaGateway creates a MetaGateway over the next gateway.
func NewMetaGateway(next Gateway, serviceName, serviceVersion string) *MetaGateway {
	return &MetaGateway{
		serviceName:    serviceName,
		serviceVersion: serviceVersion,
		next:           next,
	}
}

func (g *MetaGateway) Send(ctx context.Context, cmd any, callback Callback) {
	g.next.Send(g.inject(ctx, cmd), cmd, callback)
}

func (g *MetaGateway) SendAndWait(ctx context.Context, cmd any) (any, error) {
	return g.next.SendAndWait(g.inject(ctx, cmd), cmd)
}

func (g *MetaGateway) SendAndWaitTimeout(ctx context.Context, cmd any, timeout time.Duration) (any, error) {
	return g.next.SendAndWaitTimeout(g.inject(ctx, cmd), cmd, timeout)
}

func (g *MetaGateway) inject(ctx context.Context, cmd any) context.Context {
	metadata := map[meta.ContextKey]string{ //nolint:exhaustive // we are not using all keys
		meta.TraceID:        getTraceID(ctx),
		meta.CommandName:    command.AsMessage(cmd).Name(),
		meta.ServiceName:    g.serviceName,
		meta.ServiceVersion: g.serviceVersion,
	}

	// add meta to context for downstream chain
	return meta.InjectMetaToContext(ctx, metadata)
}

// getTraceID extracts the trace ID from the current span in the context.
// If no trace ID is available, it generates a new UUID to use as a trace ID.
func getTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	traceID := span.SpanContext().TraceID()

	if traceID.IsValid() {
		return traceID.String()
	}

	return fmt.Sprintf("man-%s", uuid.New().String())
}
