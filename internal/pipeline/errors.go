// Package pipeline orchestrates generation and classification requests:
// config and credential resolution, safety filtering, record bookkeeping,
// the provider call and response interpretation.
package pipeline

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Resolution failures surfaced to the HTTP layer.
var (
	// ErrConfigNotFound reports that no config matched the request, either
	// by ID or because the owner has no default.
	ErrConfigNotFound = errors.New("pipeline: config not found")
	// ErrConfigInactive reports a resolved config that is switched off.
	ErrConfigInactive = errors.New("pipeline: config inactive")
	// ErrCredentialNotFound reports that no credential matched the config.
	ErrCredentialNotFound = errors.New("pipeline: credential not found")
	// ErrCredentialInactive reports a resolved credential that is switched off.
	ErrCredentialInactive = errors.New("pipeline: credential inactive")
)

// ValidationError reports a caller input problem. It maps to a 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pipeline: invalid %s: %s", e.Field, e.Message)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// validHTTPURL reports whether raw is an absolute http or https URL.
func validHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func elapsedMs(start time.Time) int {
	return int(time.Since(start).Milliseconds())
}
