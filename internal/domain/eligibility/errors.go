package eligibility

import (
	"errors"
	"fmt"
)

// ErrValidation is the kind shared by every constraint validation failure.
var ErrValidation = errors.New("invalid constraint")

// ValidationError names the offending constraint field.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError builds a ValidationError. Callers validating their own
// query fields (the result count, for example) use it to share the kind.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
