package slotlock

import (
	"context"
	"sync"
)

// MemoryLocker is a map-backed locker for development and tests.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewMemoryLocker creates an empty in-memory locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]bool)}
}

func (l *MemoryLocker) Acquire(_ context.Context, doctorID, date, slotStart string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := slotKey(doctorID, date, slotStart)
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *MemoryLocker) Release(_ context.Context, doctorID, date, slotStart string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, slotKey(doctorID, date, slotStart))
	return nil
}
