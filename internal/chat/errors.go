package chat

import (
	"errors"
	"fmt"
)

// ErrSendInFlight is returned when Send is called while another send
// on the same pipeline has not finished.
var ErrSendInFlight = errors.New("a send is already in progress")

// ValidationError is a local failure that never reaches a
// collaborator; composition state is preserved so the user can retry.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// PermissionError reports a collaborator denying an operation, naming
// the resource and the permission level it requires.
type PermissionError struct {
	Resource   string
	Permission string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("no permission on %q: requires %s", e.Resource, e.Permission)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPermission reports whether err is a PermissionError.
func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
