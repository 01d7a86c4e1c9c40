package genarena

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// MaxGeneration is the last generation a slot can be issued under.
	// A slot removed at this generation is retired instead of recycled.
	MaxGeneration = math.MaxUint32

	// MaxSlots is the maximum number of slots an arena can hold.
	// Index math.MaxUint32 is reserved for Null.
	MaxSlots = math.MaxUint32

	nullIndex = math.MaxUint32
)

// Handle addresses a value stored in an Arena.
//
// A Handle is a plain value: copy it, compare it with ==, use it as a map key.
// It is only meaningful for the arena that issued it.
type Handle struct {
	index      uint32
	generation uint32
}

// Null is the handle that refers to nothing. It never resolves in any arena.
var Null = Handle{index: nullIndex}

// NewHandle builds a handle from its parts.
func NewHandle(index, generation uint32) Handle {
	return Handle{index: index, generation: generation}
}

// Index returns the slot index.
func (h Handle) Index() uint32 { return h.index }

// Generation returns the generation the handle was issued under.
func (h Handle) Generation() uint32 { return h.generation }

// IsNull reports whether h is the Null handle.
func (h Handle) IsNull() bool { return h.index == nullIndex }

// Bits packs the handle into a single integer. The index occupies the high
// 32 bits, so ordering the packed values matches Compare.
func (h Handle) Bits() uint64 {
	return uint64(h.index)<<32 | uint64(h.generation)
}

// HandleFromBits is the inverse of Handle.Bits.
func HandleFromBits(bits uint64) Handle {
	return Handle{index: uint32(bits >> 32), generation: uint32(bits)} //nolint:gosec // truncation intended
}

// Compare orders handles by index, then by generation.
func Compare(a, b Handle) int {
	if c := cmp.Compare(a.index, b.index); c != 0 {
		return c
	}
	return cmp.Compare(a.generation, b.generation)
}

// Less reports whether h sorts before other.
func (h Handle) Less(other Handle) bool {
	return Compare(h, other) < 0
}

// String returns "<index>v<generation>", or "null" for Null itself.
// Other handles at the reserved index keep their generation.
func (h Handle) String() string {
	if h == Null {
		return "null"
	}
	return fmt.Sprintf("%dv%d", h.index, h.generation)
}

// MarshalText implements encoding.TextMarshaler using the String form.
func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Handle) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "null" {
		*h = Null
		return nil
	}

	idx, gen, ok := strings.Cut(s, "v")
	if !ok {
		return fmt.Errorf("genarena: invalid handle %q", s)
	}

	index, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return fmt.Errorf("genarena: invalid handle index %q: %w", s, errors.Unwrap(err))
	}
	generation, err := strconv.ParseUint(gen, 10, 32)
	if err != nil {
		return fmt.Errorf("genarena: invalid handle generation %q: %w", s, errors.Unwrap(err))
	}

	*h = Handle{index: uint32(index), generation: uint32(generation)}
	return nil
}
