// Package errs defines the error taxonomy shared by the registries, the
// mint state services and the orchestrator. Handlers translate these into
// HTTP status codes in a single place.
package errs

import (
	"errors"
	"fmt"
)

// ErrNotFound marks an entity id that is absent from its registry.
// Wrap with context: fmt.Errorf("chain %s: %w", id, errs.ErrNotFound).
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed or semantically invalid input.
// Never retried automatically.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation creates a field-level validation error.
func NewValidation(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a duplicate id on create or a structural
// invariant violation (removing the only chain, double terminal update).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflict creates a conflict error.
func NewConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// POREligibilityError reports a mint rejected by the proof-of-reserve gate.
// Reason names which sub-condition failed.
type POREligibilityError struct {
	Reason  string
	Message string
}

// POR gate failure reasons.
const (
	PORReasonStale        = "stale_attestation"
	PORReasonInsufficient = "insufficient_reserve"
	PORReasonUnavailable  = "attestation_unavailable"
)

func (e *POREligibilityError) Error() string {
	return fmt.Sprintf("por gate rejected mint (%s): %s", e.Reason, e.Message)
}

// SubmissionError reports a failed transfer submission for one asset.
// The whole mint is marked failed and the asset is named in the record.
type SubmissionError struct {
	AssetID string
	Err     error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed for asset %s: %v", e.AssetID, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
