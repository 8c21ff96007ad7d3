// Package storage reads product collateral and brand assets by reference.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a reference points at nothing.
var ErrNotFound = errors.New("stored file not found")

type Reader interface {
	Read(ctx context.Context, ref string) ([]byte, error)
}
