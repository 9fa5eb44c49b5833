package async

import "sync"

// CallTable maps sequence ids to the futures of in-flight calls.
type CallTable[T any] struct {
	mu    sync.Mutex
	calls map[uint64]*Future[T]
}

// NewCallTable returns an empty table.
func NewCallTable[T any]() *CallTable[T] {
	return &CallTable[T]{calls: make(map[uint64]*Future[T])}
}

// TryInsert registers f under id. It returns false, leaving the table
// unchanged, if id is already present.
func (t *CallTable[T]) TryInsert(id uint64, f *Future[T]) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.calls[id]; exists {
		return false
	}
	t.calls[id] = f
	return true
}

// TryRemove takes the future registered under id out of the table.
// Only one caller can ever receive a given entry.
func (t *CallTable[T]) TryRemove(id uint64) (*Future[T], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.calls[id]
	if ok {
		delete(t.calls, id)
	}
	return f, ok
}

// Len returns the number of registered entries.
func (t *CallTable[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}
