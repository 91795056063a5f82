package intercept

import (
	"errors"
	"fmt"
)

// ReplayedError stands in for an error recorded from the real operation.
// Only the error's type name and message survive recording.
type ReplayedError struct {
	Type    string
	Message string
}

// Error implements the error interface. It returns the recorded message
// so callers that only print errors see the original text.
func (e *ReplayedError) Error() string {
	return e.Message
}

// String includes the recorded type name.
func (e *ReplayedError) String() string {
	if e.Type == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// IsReplayed reports whether err (or any error it wraps) was reconstructed
// from a recording.
func IsReplayed(err error) bool {
	var re *ReplayedError
	return errors.As(err, &re)
}

// errorTypeName is the type tag recorded for a real error. A replayed
// error recorded again keeps its original type.
func errorTypeName(err error) string {
	var re *ReplayedError
	if errors.As(err, &re) && re.Type != "" {
		return re.Type
	}
	return fmt.Sprintf("%T", err)
}

// recovered converts a recovered panic value into an error.
func recovered(op string, r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%s panicked: %w", op, err)
	}
	return fmt.Errorf("%s panicked: %v", op, r)
}
