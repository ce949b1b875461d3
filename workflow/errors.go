package workflow

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/microaistudio/hptourism-r1-sub000/db/models"
)

var (
	// ErrForbidden means the actor lacks permission for the requested
	// action on this record. Never retried automatically.
	ErrForbidden = errors.New("actor not permitted to perform this action")

	// ErrConflict means another request mutated the record between read
	// and write. The caller must re-read and retry.
	ErrConflict = errors.New("application was modified concurrently")

	// ErrAlreadySubmitted means a duplicate one-shot submission, e.g. a
	// second inspection report for the same order.
	ErrAlreadySubmitted = errors.New("report already submitted for this order")
)

// ValidationError reports malformed or missing input field-by-field so the
// caller can correct and resubmit.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// InvalidTransitionError means the requested action is not defined for the
// record's current status. The status is included so the caller can
// resynchronize.
type InvalidTransitionError struct {
	Status models.ApplicationStatus
	Action Action
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("action %s is not defined for status %s", e.Action, e.Status)
}

// MissingDocumentsError itemizes the document requirements a final
// submission still lacks.
type MissingDocumentsError struct {
	Missing []string
}

func (e *MissingDocumentsError) Error() string {
	return "required documents missing: " + strings.Join(e.Missing, ", ")
}

// IncompleteFeeError itemizes the fee fields a final submission still lacks.
type IncompleteFeeError struct {
	Missing []string
}

func (e *IncompleteFeeError) Error() string {
	return "fee calculation incomplete: " + strings.Join(e.Missing, ", ")
}
