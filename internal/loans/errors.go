package loans

import (
	"errors"
	"fmt"
)

// ErrLoanNotFound signals that no loan exists for the given key.
var ErrLoanNotFound = errors.New("loan not found")

// PreconditionError rejects an operation before any state change
// (nonexistent customer/property, disallowed status transition).
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

func preconditionf(format string, args ...interface{}) error {
	return &PreconditionError{Reason: fmt.Sprintf(format, args...)}
}
