package async

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadyWritten is returned by Future.Write on the second write.
var ErrAlreadyWritten = errors.New("async: future already written")

// Future is a single-assignment value.
type Future[T any] struct {
	mu    sync.Mutex
	done  chan struct{}
	value T
}

// NewFuture returns an empty future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Write stores v and wakes every reader. It fails with ErrAlreadyWritten if a
// value was already stored; the stored value is left untouched.
func (f *Future[T]) Write(v T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	select {
	case <-f.done:
		return ErrAlreadyWritten
	default:
	}
	f.value = v
	close(f.done)
	return nil
}

// Written reports whether a value has been stored.
func (f *Future[T]) Written() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed once the value is written.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Read blocks until the value is written or ctx is done. A value that is
// already written is returned even if ctx is already cancelled.
func (f *Future[T]) Read(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.load(), nil
	default:
	}
	select {
	case <-f.done:
		return f.load(), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Compute waits for the value like Read, then runs fn with exclusive access
// to it. fn may replace the value through the pointer; readers observe the
// change after fn returns.
func (f *Future[T]) Compute(ctx context.Context, fn func(v *T)) error {
	select {
	case <-f.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.value)
	return nil
}

func (f *Future[T]) load() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}
