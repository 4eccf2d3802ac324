package dataset

import "fmt"

// FormatError reports input data that cannot be normalized.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type FormatError struct {
	Reason string
	cause  error
}

func (e *FormatError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("invalid data format: %s: %v", e.Reason, e.cause)
	}
	return "invalid data format: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.cause }

// NewFormatError returns a FormatError with an optional cause.
func NewFormatError(reason string, cause error) *FormatError {
	return &FormatError{Reason: reason, cause: cause}
}

func wrapFormat(reason string, err error) error {
	return NewFormatError(reason, err)
}
