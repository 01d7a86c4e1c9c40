package genarena

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Validate checks the structural invariants of the arena:
//
//   - the free list terminates, has no cycle and links each vacant slot once,
//   - every vacant slot is on the free list unless it is retired,
//   - no retired slot is on the free list,
//   - the tracked length and retired counts match the slots.
//
// A violation is reported as a *DecodeError. Arenas built through the public
// API always validate; the check exists for decoded input.
func (a *Arena[T]) Validate() error {
	n := len(a.slots)
	linked := roaring.New()

	field, from := "next", -1
	for link := a.freeHead; link != 0; {
		index := linkTarget(link)
		if uint64(index) >= uint64(n) {
			return decodeErrorf(from, field, "index %d out of range [0:%d]", index, n)
		}
		if linked.Contains(index) {
			return decodeErrorf(from, field, "free list revisits slot %d", index)
		}

		s := &a.slots[index]
		if s.occupied {
			return decodeErrorf(from, field, "free list links occupied slot %d", index)
		}
		if s.generation == MaxGeneration {
			return decodeErrorf(from, field, "free list links retired slot %d", index)
		}

		linked.Add(index)
		field, from = "next_free", int(index)
		link = s.nextFree
	}

	occupied, retired := 0, 0
	for i := range a.slots {
		s := &a.slots[i]
		switch {
		case s.occupied:
			occupied++
		case linked.Contains(uint32(i)): //nolint:gosec // n <= MaxSlots
		case s.retired():
			retired++
		default:
			return decodeErrorf(i, "next_free", "vacant slot is not on the free list")
		}
	}

	if occupied != a.length {
		return decodeErrorf(-1, "values", "length %d does not match %d occupied slots", a.length, occupied)
	}
	if retired != a.retired {
		return decodeErrorf(-1, "values", "retired count %d does not match %d retired slots", a.retired, retired)
	}
	return nil
}
