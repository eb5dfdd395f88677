// Package meta_test contains tests for the meta package.
package meta_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rise-and-shine/cmdgw/meta"
)

func TestInjectMetaToContext(t *testing.T) {
	tests := []struct {
		name        string
		initialCtx  context.Context
		metaData    map[meta.ContextKey]string
		keyToVerify meta.ContextKey
		valueExpect string
		nilValue    bool
	}{
		{
			name:       "inject single value",
			initialCtx: t.Context(),
			metaData: map[meta.ContextKey]string{
				meta.TraceID: "abc-123",
			},
			keyToVerify: meta.TraceID,
			valueExpect: "abc-123",
		},
		{
			name:       "inject multiple values",
			initialCtx: t.Context(),
			metaData: map[meta.ContextKey]string{
				meta.TraceID:        "trace-123",
				meta.CommandName:    "CreateOrder",
				meta.ActorID:        "user-456",
				meta.ServiceName:    "order-service",
				meta.ServiceVersion: "v1.0.0",
			},
			keyToVerify: meta.CommandName,
			valueExpect: "CreateOrder",
		},
		{
			name:       "skip empty values",
			initialCtx: t.Context(),
			metaData: map[meta.ContextKey]string{
				meta.TraceID: "trace-123",
				meta.ActorID: "",
			},
			keyToVerify: meta.ActorID,
			nilValue:    true,
		},
		{
			name:       "overwrite existing value",
			initialCtx: context.WithValue(t.Context(), meta.TraceID, "old-trace-id"),
			metaData: map[meta.ContextKey]string{
				meta.TraceID: "new-trace-id",
			},
			keyToVerify: meta.TraceID,
			valueExpect: "new-trace-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := meta.InjectMetaToContext(tt.initialCtx, tt.metaData)

			got := ctx.Value(tt.keyToVerify)
			if tt.nilValue {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.valueExpect, got)
		})
	}
}

func TestExtractMetaFromContext(t *testing.T) {
	t.Run("extracts only known non-empty keys", func(t *testing.T) {
		ctx := meta.InjectMetaToContext(t.Context(), map[meta.ContextKey]string{
			meta.TraceID:     "trace-1",
			meta.CommandName: "ReserveStock",
		})
		ctx = context.WithValue(ctx, meta.ContextKey("unknown_key"), "ignored")

		data := meta.ExtractMetaFromContext(ctx)

		assert.Equal(t, map[meta.ContextKey]string{
			meta.TraceID:     "trace-1",
			meta.CommandName: "ReserveStock",
		}, data)
	})

	t.Run("empty context yields empty map", func(t *testing.T) {
		data := meta.ExtractMetaFromContext(t.Context())
		assert.Empty(t, data)
	})
}
