package domain

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmpID = errors.New("Emp id has already been taken")
	ErrUnknownFilter  = errors.New("unknown filter")
	ErrEmptyInput     = errors.New("empty input")
)

// StoreError is a persistence failure not caught by row validation.
// Its message is reported alongside the row's validation messages.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if errors.Is(e.Err, ErrDuplicateEmpID) {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }
