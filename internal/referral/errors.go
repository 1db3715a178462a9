package referral

import (
	"errors"
	"fmt"
)

// ErrNoDoctorFound indicates the patient has no general-practice history.
var ErrNoDoctorFound = errors.New("referral: no general practice doctor found")

// ValidationError rejects a referral before any appointment side effects.
// It maps to a 400 at the HTTP boundary.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
