package genarena

import "sync"

// Synced guards an Arena with a single read/write lock.
//
// Reads (Get, Contains, Len, Read) share the lock; everything else holds it
// exclusively.
type Synced[T any] struct {
	mu    sync.RWMutex
	arena *Arena[T]
}

// NewSynced creates a locked arena.
func NewSynced[T any](opts ...Option) *Synced[T] {
	return &Synced[T]{arena: New[T](opts...)}
}

// Wrap guards an existing arena. The caller must stop using a directly.
func Wrap[T any](a *Arena[T]) *Synced[T] {
	return &Synced[T]{arena: a}
}

// Insert stores v and returns its handle.
func (s *Synced[T]) Insert(v T) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arena.Insert(v)
}

// Get returns a copy of the value h refers to.
func (s *Synced[T]) Get(h Handle) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.arena.Get(h)
}

// Update applies f to the value h refers to under the write lock.
// It returns false if h does not resolve.
func (s *Synced[T]) Update(h Handle, f func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.arena.GetPtr(h)
	if ok {
		f(v)
	}
	return ok
}

// Remove removes and returns the value h refers to.
func (s *Synced[T]) Remove(h Handle) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arena.Remove(h)
}

// Contains reports whether h resolves.
func (s *Synced[T]) Contains(h Handle) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.arena.Contains(h)
}

// Len returns the number of stored values.
func (s *Synced[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.arena.Len()
}

// Stats returns the current slot usage.
func (s *Synced[T]) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.arena.Stats()
}

// Read runs f with shared access. f must not modify the arena or retain it.
func (s *Synced[T]) Read(f func(*Arena[T])) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f(s.arena)
}

// Write runs f with exclusive access. f must not retain the arena.
func (s *Synced[T]) Write(f func(*Arena[T])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s.arena)
}
