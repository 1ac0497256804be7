package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates a missing or out-of-range field.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates the referenced item or category does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the caller's role does not permit the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidFormat indicates an import payload that is not an array of items.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrAborted indicates the confirmation prompt was not accepted.
	ErrAborted = errors.New("operation aborted")
)

// PersistenceWarning reports that a mutation was applied in memory but the
// durable record could not be written. The mutation is not rolled back.
type PersistenceWarning struct {
	Record string
	Err    error
}

func (w *PersistenceWarning) Error() string {
	return fmt.Sprintf("persist %s: %v", w.Record, w.Err)
}

func (w *PersistenceWarning) Unwrap() error { return w.Err }

// IsPersistenceWarning reports whether err carries a PersistenceWarning.
func IsPersistenceWarning(err error) bool {
	var w *PersistenceWarning
	return errors.As(err, &w)
}

// Failed reports whether err means the operation did not happen. A nil error
// or a pure persistence warning both count as success.
func Failed(err error) bool {
	return err != nil && !IsPersistenceWarning(err)
}
