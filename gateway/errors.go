package gateway

import "errors"

// Error codes for gateway operations.
const (
	// CodeInvalidConfig is returned when a required collaborator is missing
	// at construction time.
	CodeInvalidConfig = "GATEWAY_INVALID_CONFIG"

	// CodeCommandExecution is attached to failures translated from
	// exceptional dispatch results.
	CodeCommandExecution = "COMMAND_EXECUTION_FAILED"
)

// ErrResultTimeout is returned by the bounded-wait variant when the result
// does not arrive in time. It does not cancel the in-flight dispatch.
var ErrResultTimeout = errors.New("gateway: timed out waiting for command result")

// ExecutionError wraps the cause of an exceptional dispatch result that is
// not already a caller-facing failure type. The original cause is always
// reachable through Unwrap.
type ExecutionError struct {
	cause error
}

func newExecutionError(cause error) *ExecutionError {
	return &ExecutionError{cause: cause}
}

func (e *ExecutionError) Error() string {
	return "an error occurred while executing a command: " + e.cause.Error()
}

func (e *ExecutionError) Unwrap() error {
	return e.cause
}
