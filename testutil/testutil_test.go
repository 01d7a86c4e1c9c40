package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRNG_Deterministic(t *testing.T) {
	a := NewRNG(4711)
	b := NewRNG(4711)

	assert.Equal(t, a.Ops(100, 0.5), b.Ops(100, 0.5))
	assert.Equal(t, a.Bytes(16), b.Bytes(16))
	assert.Equal(t, int64(4711), a.Seed())
}

func TestRNG_Reset(t *testing.T) {
	rng := NewRNG(42)
	first := rng.Uint64()
	rng.Uint64()

	rng.Reset()
	assert.Equal(t, first, rng.Uint64())
}

func TestOps_Distribution(t *testing.T) {
	rng := NewRNG(1)

	ops := rng.Ops(10_000, 1.0)
	for _, op := range ops {
		assert.Equal(t, OpInsert, op.Kind)
	}

	counts := map[OpKind]int{}
	for _, op := range rng.Ops(10_000, 0.4) {
		counts[op.Kind]++
		assert.GreaterOrEqual(t, op.Pick, 0)
	}
	assert.InDelta(t, 4000, counts[OpInsert], 400)
	assert.Len(t, counts, 4)
}
