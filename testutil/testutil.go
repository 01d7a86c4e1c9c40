package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	_, _ = r.rand.Read(b)
	return b
}

// OpKind identifies a random arena operation.
type OpKind int

const (
	// OpInsert inserts Op.Value.
	OpInsert OpKind = iota
	// OpRemove removes the live handle chosen by Op.Pick.
	OpRemove
	// OpRemoveStale replays a handle that was removed earlier.
	OpRemoveStale
	// OpGet reads the live handle chosen by Op.Pick.
	OpGet
)

// Op is one step of a random operation sequence.
type Op struct {
	Kind OpKind
	// Pick selects among candidate handles: use Pick % len(candidates).
	Pick  int
	Value int
}

// Ops generates n operations. insertRatio is the probability of OpInsert;
// the remaining probability is split between removes, stale removes and gets.
func (r *RNG) Ops(n int, insertRatio float64) []Op {
	r.mu.Lock()
	defer r.mu.Unlock()

	ops := make([]Op, n)
	for i := range ops {
		op := Op{Pick: r.rand.Intn(1 << 30), Value: r.rand.Int()}
		p := r.rand.Float64()
		rest := (1 - insertRatio) / 3
		switch {
		case p < insertRatio:
			op.Kind = OpInsert
		case p < insertRatio+rest:
			op.Kind = OpRemove
		case p < insertRatio+2*rest:
			op.Kind = OpRemoveStale
		default:
			op.Kind = OpGet
		}
		ops[i] = op
	}
	return ops
}
