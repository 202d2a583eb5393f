// Package errs defines the error taxonomy shared by the pipelines, stores
// and HTTP layer. Callers classify with errors.Is / errors.As and map each
// kind to a response: validation faults and missing resources are client
// errors, upstream model/index faults surface as a generic processing
// failure and are never retried here.
package errs

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a referenced document or conversation that is absent or
// not owned by the caller.
var ErrNotFound = errors.New("resource not found")

// ValidationError reports malformed input: missing filename, unsupported
// extension, oversize upload, malformed id.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError with a formatted message.
func Validation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation fault.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UpstreamError wraps a failure of an external collaborator (embedding
// model, language model, vector index, object store). The pipeline does not
// retry; retry and backoff policy belongs to the caller.
type UpstreamError struct {
	Op  string // which call failed, e.g. "embed", "generate", "vector upsert"
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream wraps err as an UpstreamError for the named operation.
func Upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}
