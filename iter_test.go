package genarena

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIter_SkipsVacantAndReportsLen(t *testing.T) {
	a := New[string]()
	h0 := a.Insert("a")
	h1 := a.Insert("b")
	h2 := a.Insert("c")
	a.Insert("d")
	a.Remove(h1)
	a.Remove(h2)

	it := a.Iter()
	assert.Equal(t, 2, it.Len())

	h, v, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, h0, h)
	assert.Equal(t, "a", *v)
	assert.Equal(t, 1, it.Len())

	h, v, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, NewHandle(3, 0), h)
	assert.Equal(t, "d", *v)
	assert.Equal(t, 0, it.Len())

	h, v, ok = it.Next()
	assert.False(t, ok)
	assert.Nil(t, v)
	assert.Equal(t, Null, h)
}

func TestIter_Reset(t *testing.T) {
	a := New[int]()
	for i := range 5 {
		a.Insert(i)
	}

	it := a.Iter()
	for _, _, ok := it.Next(); ok; _, _, ok = it.Next() {
	}
	assert.Equal(t, 0, it.Len())

	it.Reset()
	assert.Equal(t, 5, it.Len())
	_, v, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, 0, *v)
}

func TestIter_Empty(t *testing.T) {
	var a Arena[int]
	it := a.Iter()
	assert.Equal(t, 0, it.Len())
	_, _, ok := it.Next()
	assert.False(t, ok)
}

func TestArena_AllHandlesValues(t *testing.T) {
	a := New[int]()
	for i := range 6 {
		a.Insert(i * i)
	}
	a.RemoveIndex(2)

	handles := slices.Collect(a.Handles())
	assert.Len(t, handles, a.Len())
	assert.True(t, slices.IsSortedFunc(handles, Compare))
	for _, h := range handles {
		assert.True(t, a.Contains(h))
	}

	var values []int
	for v := range a.Values() {
		values = append(values, *v)
	}
	assert.Equal(t, []int{0, 1, 9, 16, 25}, values)

	// Early exit.
	n := 0
	for range a.All() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestArena_ValuesMutateInPlace(t *testing.T) {
	a := New[int]()
	h := a.Insert(1)
	for v := range a.Values() {
		*v = 2
	}
	v, _ := a.Get(h)
	assert.Equal(t, 2, v)
}
