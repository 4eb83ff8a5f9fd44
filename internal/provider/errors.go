package provider

import (
	"errors"
	"fmt"
)

// ErrUnsupportedProvider indicates the provider type has no registered client.
var ErrUnsupportedProvider = errors.New("unsupported provider type")

// ErrMissingCredential indicates required credential fields are absent or empty.
var ErrMissingCredential = errors.New("missing credential")

// InvocationError wraps a transport or vendor-side failure. It carries the
// underlying vendor message so the orchestrator can persist it verbatim.
type InvocationError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *InvocationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s invocation failed (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s invocation failed: %s", e.Provider, e.Message)
}

// Unwrap exposes the underlying transport error, when any.
func (e *InvocationError) Unwrap() error { return e.Err }

// invocationErr builds an InvocationError from a transport error.
func invocationErr(providerType string, err error) *InvocationError {
	return &InvocationError{Provider: providerType, Message: err.Error(), Err: err}
}

// vendorErr builds an InvocationError from a non-2xx vendor reply.
func vendorErr(providerType string, status int, body []byte) *InvocationError {
	msg := string(body)
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return &InvocationError{Provider: providerType, StatusCode: status, Message: msg}
}
