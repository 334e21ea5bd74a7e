package factory

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Get after the factory was closed.
var ErrClosed = errors.New("uniquefactory: factory closed")

// CreateError reports that the create function failed for Key.
// Nothing was cached; a later Get for the same key constructs from scratch.
type CreateError struct {
	Key any
	Err error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("uniquefactory: create %v: %v", e.Key, e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }
