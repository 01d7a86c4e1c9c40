package genarena

// slot is one storage cell of an Arena.
//
// An occupied slot holds value under generation. A vacant slot keeps the
// generation of its last occupant and links to the next vacant slot.
// Links are 1-based so that the zero value terminates the list.
type slot[T any] struct {
	value      T
	generation uint32
	nextFree   uint32
	occupied   bool
}

// retired reports whether the slot can never be occupied again.
func (s *slot[T]) retired() bool {
	return !s.occupied && s.generation == MaxGeneration && s.nextFree == 0
}

func linkTo(index uint32) uint32 { return index + 1 }

// linkTarget resolves a non-zero link to the slot index it points at.
func linkTarget(link uint32) uint32 { return link - 1 }
