package store

import (
	"errors"
	"fmt"
)

// ErrNoRows is returned by operations addressing a single row that does not exist.
var ErrNoRows = errors.New("no rows affected")

// StorageError wraps a connectivity or constraint failure from the database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
