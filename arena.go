package genarena

import (
	"fmt"
	"iter"
)

// Arena stores values of type T and addresses them with generational handles.
//
// Removing a value recycles its slot for a later Insert, but the handle issued
// for the removed value never resolves again: the slot's generation moves on.
//
// An Arena performs no locking. Mutating methods need exclusive access; Get,
// Contains, Len, Cap and iteration may run concurrently with each other.
// Use Synced for a locked wrapper.
//
// The zero value is an empty arena ready to use.
type Arena[T any] struct {
	slots    []slot[T]
	freeHead uint32 // 1-based link to the first vacant slot, 0 if none
	length   int
	retired  int

	logger  *Logger
	metrics MetricsCollector
}

// New creates an empty arena.
func New[T any](opts ...Option) *Arena[T] {
	o := applyOptions(opts)
	return &Arena[T]{
		slots:   make([]slot[T], 0, o.capacity),
		logger:  o.logger,
		metrics: o.metrics,
	}
}

// Insert stores v and returns its handle.
//
// A vacant slot is reused when one exists; otherwise a new slot is appended.
// Insert panics if the arena already holds MaxSlots slots.
func (a *Arena[T]) Insert(v T) Handle {
	h := a.nextHandle()
	a.occupy(h, v)
	return h
}

// InsertWith stores the value returned by f, which receives the handle the
// value is stored under. f must not modify the arena.
func (a *Arena[T]) InsertWith(f func(Handle) T) Handle {
	h := a.nextHandle()
	a.occupy(h, f(h))
	return h
}

// nextHandle returns the handle the next Insert will produce.
func (a *Arena[T]) nextHandle() Handle {
	if a.freeHead != 0 {
		index := linkTarget(a.freeHead)
		return Handle{index: index, generation: a.slots[index].generation + 1}
	}

	if uint64(len(a.slots)) >= MaxSlots {
		panic(fmt.Sprintf("genarena: arena is full (%d slots)", len(a.slots)))
	}
	return Handle{index: uint32(len(a.slots)), generation: 0} //nolint:gosec // bounded by MaxSlots
}

func (a *Arena[T]) occupy(h Handle, v T) {
	if int(h.index) == len(a.slots) {
		a.slots = append(a.slots, slot[T]{value: v, generation: h.generation, occupied: true})
		a.length++
		return
	}

	s := &a.slots[h.index]
	a.freeHead = s.nextFree
	*s = slot[T]{value: v, generation: h.generation, occupied: true}
	a.length++
}

// slotFor returns the occupied slot h resolves to, or nil.
func (a *Arena[T]) slotFor(h Handle) *slot[T] {
	if uint64(h.index) >= uint64(len(a.slots)) {
		return nil
	}
	s := &a.slots[h.index]
	if !s.occupied || s.generation != h.generation {
		return nil
	}
	return s
}

// Get returns the value h refers to.
// It returns false if h is stale, out of range or addresses a vacant slot.
func (a *Arena[T]) Get(h Handle) (T, bool) {
	if s := a.slotFor(h); s != nil {
		return s.value, true
	}
	var zero T
	return zero, false
}

// GetPtr returns a pointer to the value h refers to, for in-place updates.
// The pointer is valid until the next Insert, which may grow the backing store.
func (a *Arena[T]) GetPtr(h Handle) (*T, bool) {
	if s := a.slotFor(h); s != nil {
		return &s.value, true
	}
	return nil, false
}

// GetByIndex returns the occupant of slot index together with its current handle.
func (a *Arena[T]) GetByIndex(index uint32) (Handle, *T, bool) {
	if uint64(index) >= uint64(len(a.slots)) || !a.slots[index].occupied {
		return Null, nil, false
	}
	s := &a.slots[index]
	return Handle{index: index, generation: s.generation}, &s.value, true
}

// Contains reports whether h currently resolves to a value.
func (a *Arena[T]) Contains(h Handle) bool {
	return a.slotFor(h) != nil
}

// Remove removes and returns the value h refers to.
// It returns false, leaving the arena unchanged, if h does not resolve.
func (a *Arena[T]) Remove(h Handle) (T, bool) {
	if a.slotFor(h) == nil {
		var zero T
		return zero, false
	}
	return a.vacate(h.index), true
}

// RemoveIndex removes the value in slot index without checking a generation.
//
// This is an escape hatch for callers that own the index out of band. It gives
// no protection against a slot that has been reused since the caller learned
// the index. It returns false for a vacant slot and panics if index is out of
// range.
func (a *Arena[T]) RemoveIndex(index uint32) (T, bool) {
	if uint64(index) >= uint64(len(a.slots)) {
		panic(fmt.Sprintf("genarena: RemoveIndex index %d out of range [0:%d]", index, len(a.slots)))
	}
	if !a.slots[index].occupied {
		var zero T
		return zero, false
	}
	return a.vacate(index), true
}

// vacate empties an occupied slot and links it into the free list, unless its
// generation is exhausted, in which case the slot is retired.
func (a *Arena[T]) vacate(index uint32) T {
	s := &a.slots[index]
	v := s.value

	var zero T
	s.value = zero
	s.occupied = false
	a.length--

	if s.generation == MaxGeneration {
		s.nextFree = 0
		a.retired++
		if a.logger != nil {
			a.logger.LogRetire(index, a.retired)
		}
		if a.metrics != nil {
			a.metrics.RecordSlotRetired()
		}
		return v
	}

	s.nextFree = a.freeHead
	a.freeHead = linkTo(index)
	return v
}

// Retain removes every value for which keep returns false.
func (a *Arena[T]) Retain(keep func(Handle, *T) bool) {
	for i := range a.slots {
		s := &a.slots[i]
		if !s.occupied {
			continue
		}
		index := uint32(i) //nolint:gosec // len(a.slots) <= MaxSlots
		if !keep(Handle{index: index, generation: s.generation}, &s.value) {
			a.vacate(index)
		}
	}
}

// Clear removes all values. Slots are kept and recycled by later inserts, so
// every handle issued before Clear stays stale.
func (a *Arena[T]) Clear() {
	for i := range a.slots {
		if a.slots[i].occupied {
			a.vacate(uint32(i)) //nolint:gosec // len(a.slots) <= MaxSlots
		}
	}
}

// Drain removes values while yielding them. Stopping early leaves the rest in
// place.
func (a *Arena[T]) Drain() iter.Seq2[Handle, T] {
	return func(yield func(Handle, T) bool) {
		for i := range a.slots {
			s := &a.slots[i]
			if !s.occupied {
				continue
			}
			index := uint32(i) //nolint:gosec // len(a.slots) <= MaxSlots
			h := Handle{index: index, generation: s.generation}
			if !yield(h, a.vacate(index)) {
				return
			}
		}
	}
}

// Len returns the number of stored values.
func (a *Arena[T]) Len() int { return a.length }

// Cap returns the number of slots, occupied or not. It only grows when an
// insert finds no vacant slot to reuse.
func (a *Arena[T]) Cap() int { return len(a.slots) }

// Stats describes slot usage.
type Stats struct {
	// Len is the number of occupied slots.
	Len int `json:"len"`
	// Cap is the total number of slots.
	Cap int `json:"cap"`
	// Free is the number of slots on the free list.
	Free int `json:"free"`
	// Retired is the number of slots whose generation is exhausted.
	Retired int `json:"retired"`
}

// Stats returns the current slot usage.
func (a *Arena[T]) Stats() Stats {
	return Stats{
		Len:     a.length,
		Cap:     len(a.slots),
		Free:    len(a.slots) - a.length - a.retired,
		Retired: a.retired,
	}
}
