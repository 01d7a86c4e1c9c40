package genarena

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynced_Concurrent(t *testing.T) {
	s := NewSynced[int](WithCapacity(64))

	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	handles := make([][]Handle, workers)
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				h := s.Insert(w*perWorker + i)
				handles[w] = append(handles[w], h)
				if i%2 == 1 {
					_, ok := s.Remove(h)
					assert.True(t, ok)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker/2, s.Len())

	for w, hs := range handles {
		for i, h := range hs {
			v, ok := s.Get(h)
			if i%2 == 1 {
				assert.False(t, ok)
				continue
			}
			require.True(t, ok)
			assert.Equal(t, w*perWorker+i, v)
		}
	}

	s.Read(func(a *Arena[int]) {
		require.NoError(t, a.Validate())
	})
}

func TestSynced_Update(t *testing.T) {
	s := NewSynced[int]()
	h := s.Insert(1)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(h, func(v *int) { *v++ })
		}()
	}
	wg.Wait()

	v, ok := s.Get(h)
	require.True(t, ok)
	assert.Equal(t, 51, v)

	s.Remove(h)
	assert.False(t, s.Update(h, func(*int) { t.Fatal("called for stale handle") }))
	assert.False(t, s.Contains(h))
}

func TestSynced_WrapAndWrite(t *testing.T) {
	a := New[string]()
	a.Insert("a")
	s := Wrap(a)

	s.Write(func(a *Arena[string]) {
		a.Insert("b")
		a.Clear()
	})

	assert.Equal(t, 0, s.Len())
	s.Read(func(a *Arena[string]) {
		assert.Equal(t, 2, a.Cap())
	})
}
