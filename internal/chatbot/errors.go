package chatbot

import "errors"

// ErrorKind classifies a failed chat exchange.
type ErrorKind string

const (
	// ErrNetwork covers connection failures, timeouts, and aborted reads.
	ErrNetwork ErrorKind = "network"
	// ErrStatus covers non-2xx responses from the endpoint.
	ErrStatus ErrorKind = "status"
	// ErrPayload covers malformed requests or responses.
	ErrPayload ErrorKind = "payload"
)

// Error is the typed failure surfaced by the Client. The runner turns it
// into a failed test case rather than aborting the scenario.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func asError(err error, target **Error) bool {
	return errors.As(err, target)
}
