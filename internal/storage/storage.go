package storage

import (
	"context"
	"errors"
)

// ErrEmptyData is returned when asked to persist nothing
var ErrEmptyData = errors.New("no data to store")

// Store persists encoded output images under a name and returns the
// location they were written to.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}
