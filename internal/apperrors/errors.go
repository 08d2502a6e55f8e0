package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation represents a missing or malformed required input.
type ErrValidation struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ErrValidation) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s", e.Field)
}

// Is allows for error checking with errors.Is().
func (e *ErrValidation) Is(target error) bool {
	_, ok := target.(*ErrValidation)
	return ok
}

// NewValidationError creates a new ErrValidation.
func NewValidationError(field, reason string) *ErrValidation {
	return &ErrValidation{Field: field, Reason: reason}
}

// ErrUpstream is returned when a remote API (debrid, search, metadata) answered with a
// failure or could not be reached.
type ErrUpstream struct {
	Service    string
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *ErrUpstream) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s failed", e.Service, e.Operation)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying transport error, if any.
func (e *ErrUpstream) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrUpstream) Is(target error) bool {
	_, ok := target.(*ErrUpstream)
	return ok
}

// NewUpstreamError creates an ErrUpstream for a failed remote operation.
func NewUpstreamError(service, operation string, err error) *ErrUpstream {
	return &ErrUpstream{Service: service, Operation: operation, Err: err}
}

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// NewSubtitleNotFoundError is returned when no cached descriptor exists for a subtitle ID,
// either because it expired or because it was never issued.
func NewSubtitleNotFoundError(subtitleID string) *ErrNotFound {
	return &ErrNotFound{
		Resource: "cached subtitle",
		ID:       subtitleID,
	}
}

// ErrProbe is returned when the probing tool failed or produced unparseable metadata.
type ErrProbe struct {
	URL    string
	Stderr string
	Err    error
}

// Error implements the error interface.
func (e *ErrProbe) Error() string {
	msg := fmt.Sprintf("probe failed: %v", e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ErrProbe) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrProbe) Is(target error) bool {
	_, ok := target.(*ErrProbe)
	return ok
}

// ErrConversion is returned when the conversion tool could not start or failed mid-stream.
type ErrConversion struct {
	TrackIndex int
	Format     string
	Stderr     string
	Err        error
}

// Error implements the error interface.
func (e *ErrConversion) Error() string {
	msg := fmt.Sprintf("conversion of track %d to %s failed: %v", e.TrackIndex, e.Format, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ErrConversion) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrConversion) Is(target error) bool {
	_, ok := target.(*ErrConversion)
	return ok
}

// Kind returns a short, stable label for the error taxonomy entry err belongs to.
// It is used as a metrics label and as the gRPC ErrorInfo reason.
func Kind(err error) string {
	var (
		validation *ErrValidation
		upstream   *ErrUpstream
		notFound   *ErrNotFound
		probe      *ErrProbe
		conversion *ErrConversion
	)
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &upstream):
		return "upstream"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &probe):
		return "probe"
	case errors.As(err, &conversion):
		return "conversion"
	default:
		return "internal"
	}
}
