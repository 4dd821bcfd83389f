package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("booking not found")
	ErrDuplicateID         = errors.New("booking id already exists")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrServiceNotFound     = errors.New("service not found")
	ErrPackageNotInService = errors.New("package does not belong to service")
	ErrInvalidStatus       = errors.New("invalid booking status")
	ErrInvalidTransition   = errors.New("status transition not allowed")
	ErrInvalidPIN          = errors.New("access denied: invalid pin")
	ErrPaymentDeclined     = errors.New("payment declined")
	ErrDraftNotFound       = errors.New("booking session not found")
	ErrDraftCompleted      = errors.New("booking session already completed")
	ErrStoreUnavailable    = errors.New("booking store unavailable")
	ErrCartLocked          = errors.New("booking details are locked after payment was captured")
	ErrSessionBusy         = errors.New("booking session is busy, retry shortly")
)

// ValidationError reports an unmet wizard precondition.
type ValidationError struct {
	Step    Step
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %d: %s: %s", e.Step, e.Field, e.Message)
}

func newValidationError(step Step, field, msg string) error {
	return &ValidationError{Step: step, Field: field, Message: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
