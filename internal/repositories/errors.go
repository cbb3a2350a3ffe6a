package repositories

import "fmt"

// storeError is the canonical RepositoryError implementation shared by storage backends.
type storeError struct {
	op          string
	err         error
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *storeError) Error() string {
	if e.err == nil {
		return e.op
	}
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *storeError) Unwrap() error      { return e.err }
func (e *storeError) IsNotFound() bool   { return e.notFound }
func (e *storeError) IsConflict() bool   { return e.conflict }
func (e *storeError) IsUnavailable() bool { return e.unavailable }

// NewNotFoundError marks an operation that targeted a missing record.
func NewNotFoundError(op string, err error) RepositoryError {
	return &storeError{op: op, err: err, notFound: true}
}

// NewConflictError marks an operation rejected due to a concurrent update.
func NewConflictError(op string, err error) RepositoryError {
	return &storeError{op: op, err: err, conflict: true}
}

// NewUnavailableError marks an operation that failed because the store is unreachable.
func NewUnavailableError(op string, err error) RepositoryError {
	return &storeError{op: op, err: err, unavailable: true}
}
