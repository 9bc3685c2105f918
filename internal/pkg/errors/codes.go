package errors

import (
	"net/http"
	"strings"
)

// Feature error codes.
const (
	CodeFeatureNameEmpty           = "FEATURE_NAME_EMPTY"
	CodeFeatureDuplicate           = "FEATURE_DUPLICATE"
	CodeFeatureNotFound            = "FEATURE_NOT_FOUND"
	CodeFeatureRecursiveDependency = "FEATURE_HAS_RECURSIVE_DEPENDENCY"
	CodeFeatureReferenced          = "FEATURE_NOT_DELETABLE_DUE_TO_REFERENCES"
)

// Generic error codes.
const (
	CodeInvariantViolation = "INTERNAL_INVARIANT_VIOLATION"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
)

// ErrFeatureNameEmpty is returned when a feature is created without a name.
func ErrFeatureNameEmpty() *AppError {
	return Wrap(ErrBadRequest, CodeFeatureNameEmpty, "feature name is empty", http.StatusBadRequest)
}

// ErrFeatureDuplicate is returned when the name is already taken.
func ErrFeatureDuplicate(name string) *AppError {
	return Wrap(ErrAlreadyExists, CodeFeatureDuplicate,
		"feature with name '"+name+"' already exists", http.StatusBadRequest).
		WithParams(map[string]interface{}{"name": name})
}

// ErrFeatureNotFound lists every name that could not be resolved.
func ErrFeatureNotFound(names ...string) *AppError {
	return Wrap(ErrNotFound, CodeFeatureNotFound,
		"feature(s) not found: "+strings.Join(names, ", "), http.StatusNotFound).
		WithParams(map[string]interface{}{"names": names})
}

// ErrFeatureRecursiveDependency lists the dependencies that would close a cycle.
func ErrFeatureRecursiveDependency(names ...string) *AppError {
	return Wrap(ErrRecursiveDependency, CodeFeatureRecursiveDependency,
		"Recursive dependencies found: "+strings.Join(names, ", "), http.StatusBadRequest).
		WithParams(map[string]interface{}{"names": names})
}

// ErrFeatureReferenced lists the features that still depend on the one being deleted.
func ErrFeatureReferenced(names ...string) *AppError {
	return Wrap(ErrReferenced, CodeFeatureReferenced,
		"Can't delete feature because it is referenced from other feature(s): "+strings.Join(names, ", "),
		http.StatusBadRequest).
		WithParams(map[string]interface{}{"names": names})
}

// ErrInvariant signals corrupted graph state. It is never caused by user input.
func ErrInvariant(cause error) *AppError {
	return &AppError{
		Code:       CodeInvariantViolation,
		Message:    "feature graph invariant violated",
		HTTPStatus: http.StatusInternalServerError,
		Err:        &invariantError{cause: cause},
	}
}

// ErrValidation creates a 400 error for malformed requests.
func ErrValidation(message string) *AppError {
	return Wrap(ErrBadRequest, CodeValidationFailed, message, http.StatusBadRequest)
}

// invariantError matches both ErrInvariantViolation and its cause.
type invariantError struct {
	cause error
}

func (e *invariantError) Error() string {
	return ErrInvariantViolation.Error() + ": " + e.cause.Error()
}

func (e *invariantError) Unwrap() []error {
	return []error{ErrInvariantViolation, e.cause}
}
