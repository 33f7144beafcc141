package stream

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfirmed describes a publishing that the broker refused to confirm.
	ErrNotConfirmed = errors.New("publishing was not confirmed by the broker")

	// ErrDisposed describes an access to a connection manager after Dispose.
	ErrDisposed = errors.New("connection manager is disposed")
)

// TransportError wraps a failure on the send path. A lost send has no other
// recovery path, so callers must treat it as a failed delivery.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
