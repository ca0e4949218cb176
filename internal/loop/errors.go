package loop

import (
	"errors"
	"fmt"
)

var (
	ErrPanic          = errors.New("loop: cycle panicked")
	ErrAlreadyRunning = errors.New("loop: Run called twice")
	ErrBadInterval    = errors.New("loop: interval must be positive")
)

// FrameError records which cycle failed.
type FrameError struct {
	Frame   uint64
	Wrapped error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("loop: frame %d: %v", e.Frame, e.Wrapped)
}

func (e *FrameError) Unwrap() error { return e.Wrapped }
