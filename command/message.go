// Package command defines the message types carried through the command gateway.
//
// A command is an opaque payload describing an operation that changes state.
// Before dispatch every payload is normalized into a Message, which pairs the
// payload with its name and a string metadata map. Metadata travels with the
// command across decorators and dispatch targets without this package
// interpreting it.
package command

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Message is a command payload prepared for dispatch.
//
// Name identifies the command type and is used for span naming and logging.
// Metadata holds transport- and instrumentation-level key/value pairs.
type Message struct {
	name     string
	payload  any
	metadata map[string]string
}

// NewMessage creates a Message for the given payload with empty metadata.
// The name is derived from the payload's type.
func NewMessage(payload any) Message {
	return Message{
		name:     nameFromPayload(payload),
		payload:  payload,
		metadata: map[string]string{},
	}
}

// AsMessage normalizes a value into a Message. Values that already are a
// Message are returned unchanged, so decorators can accept both raw payloads
// and pre-built messages.
func AsMessage(cmd any) Message {
	if m, ok := cmd.(Message); ok {
		return m
	}
	return NewMessage(cmd)
}

// Name returns the command name derived from the payload type.
func (m Message) Name() string {
	return m.name
}

// Payload returns the wrapped command payload.
func (m Message) Payload() any {
	return m.payload
}

// Metadata returns the message metadata. The returned map must not be
// mutated; use WithMetadata or AndMetadata to derive a new message.
func (m Message) Metadata() map[string]string {
	return m.metadata
}

// WithMetadata returns a copy of the message carrying exactly the given
// metadata, discarding any existing entries.
func (m Message) WithMetadata(metadata map[string]string) Message {
	m.metadata = lo.Assign(map[string]string{}, metadata)
	return m
}

// AndMetadata returns a copy of the message with the given entries merged
// into the existing metadata. New entries win on key collision.
func (m Message) AndMetadata(metadata map[string]string) Message {
	m.metadata = lo.Assign(map[string]string{}, m.metadata, metadata)
	return m
}

// nameFromPayload derives the command name from the payload's dynamic type,
// stripping the pointer marker and package path.
func nameFromPayload(payload any) string {
	fullType := fmt.Sprintf("%T", payload)

	fullType = strings.TrimPrefix(fullType, "*")

	parts := strings.Split(fullType, ".")
	if len(parts) > 1 {
		return parts[len(parts)-1]
	}

	return fullType
}
