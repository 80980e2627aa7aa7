package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Delete for an unknown post id. Other operations
// report a missing post as a nil result.
var ErrNotFound = errors.New("post not found")

// ValidationError reports bad caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}
