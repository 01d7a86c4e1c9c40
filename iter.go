package genarena

import "iter"

// Iter walks the occupied slots of an Arena in index order.
//
// The arena must not be modified while an Iter is in use.
type Iter[T any] struct {
	arena     *Arena[T]
	pos       int
	remaining int
}

// Iter returns an iterator positioned before the first value.
func (a *Arena[T]) Iter() *Iter[T] {
	return &Iter[T]{arena: a, remaining: a.length}
}

// Next returns the next handle and value. ok is false once the values are
// exhausted.
func (it *Iter[T]) Next() (h Handle, v *T, ok bool) {
	slots := it.arena.slots
	for it.remaining > 0 && it.pos < len(slots) {
		s := &slots[it.pos]
		index := uint32(it.pos) //nolint:gosec // len(slots) <= MaxSlots
		it.pos++
		if s.occupied {
			it.remaining--
			return Handle{index: index, generation: s.generation}, &s.value, true
		}
	}
	return Null, nil, false
}

// Len returns the exact number of values Next has yet to yield.
func (it *Iter[T]) Len() int { return it.remaining }

// Reset rewinds the iterator to the first value.
func (it *Iter[T]) Reset() {
	it.pos = 0
	it.remaining = it.arena.length
}

// All returns a sequence of every handle and value.
func (a *Arena[T]) All() iter.Seq2[Handle, *T] {
	return func(yield func(Handle, *T) bool) {
		it := a.Iter()
		for h, v, ok := it.Next(); ok; h, v, ok = it.Next() {
			if !yield(h, v) {
				return
			}
		}
	}
}

// Handles returns a sequence of every live handle.
func (a *Arena[T]) Handles() iter.Seq[Handle] {
	return func(yield func(Handle) bool) {
		for h := range a.All() {
			if !yield(h) {
				return
			}
		}
	}
}

// Values returns a sequence of pointers to every stored value.
func (a *Arena[T]) Values() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for _, v := range a.All() {
			if !yield(v) {
				return
			}
		}
	}
}
