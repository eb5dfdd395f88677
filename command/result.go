package command

// ResultMessage carries the outcome of a dispatched command: either a payload
// value or an error, never both.
type ResultMessage struct {
	payload any
	err     error
}

// NewResultMessage creates a successful result carrying the given payload.
func NewResultMessage(payload any) ResultMessage {
	return ResultMessage{payload: payload}
}

// NewExceptionalResult creates a failed result wrapping the given cause.
func NewExceptionalResult(err error) ResultMessage {
	return ResultMessage{err: err}
}

// Payload returns the result payload. It is nil for exceptional results.
func (r ResultMessage) Payload() any {
	return r.payload
}

// Err returns the cause of an exceptional result, or nil.
func (r ResultMessage) Err() error {
	return r.err
}

// IsExceptional reports whether the command completed with an error.
func (r ResultMessage) IsExceptional() bool {
	return r.err != nil
}
