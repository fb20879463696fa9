package session

import "fmt"

// ValidationError marks a recoverable input problem. No network call was
// attempted; the user corrects the input and retries.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// RecognitionError marks a backend-reported or transport-level failure
// during recognize. The session returns to the upload phase with the
// selected image preserved.
type RecognitionError struct {
	Message string
	Err     error
}

func (e *RecognitionError) Error() string { return e.Message }
func (e *RecognitionError) Unwrap() error { return e.Err }

// PersistenceError marks a store-create or menu-write failure. The
// session stays in the result phase so the user can retry.
type PersistenceError struct {
	Message string
	Err     error
}

func (e *PersistenceError) Error() string { return e.Message }
func (e *PersistenceError) Unwrap() error { return e.Err }
