package leasecache

import (
	"errors"
	"fmt"
)

// Validation errors. All are raised before any store call and are never
// retried.
var (
	ErrEmptyKey       = errors.New("leasecache: empty key")
	ErrNoKeys         = errors.New("leasecache: empty key collection")
	ErrNilValue       = errors.New("leasecache: nil value (nil caching disabled)")
	ErrNonPositiveTTL = errors.New("leasecache: ttl must be positive")
	ErrNilRecompute   = errors.New("leasecache: nil recompute func")
)

// ErrUnsupported marks operations the backing store cannot express
// (RemoveByPattern). Callers get it instead of a silent partial match.
var ErrUnsupported = errors.New("leasecache: operation not supported")

// RecomputeError wraps a failure raised by a caller-supplied RecomputeFunc.
// The recompute mutex is always released before this surfaces, so a
// subsequent caller can retry immediately.
type RecomputeError struct {
	Key string
	Err error
}

func (e *RecomputeError) Error() string {
	return fmt.Sprintf("leasecache: recompute %q: %v", e.Key, e.Err)
}

func (e *RecomputeError) Unwrap() error { return e.Err }
