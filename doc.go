// Package genarena provides a generational arena: a slot container that hands
// out small, copyable handles and detects in O(1) whether a handle still
// refers to the value it was issued for.
//
// # Quick Start
//
//	a := genarena.New[string]()
//	h := a.Insert("hello")
//
//	v, ok := a.Get(h)  // "hello", true
//	a.Remove(h)
//	_, ok = a.Get(h)   // false, forever
//
//	h2 := a.Insert("world") // reuses the slot of h under a new generation
//
// # Handles
//
// A Handle is an (index, generation) pair. Removing a value pushes its slot
// onto an intrusive free list; the next Insert pops it and bumps the slot's
// generation, so stale handles fail validation instead of aliasing the new
// occupant. Handles are comparable, hashable and ordered by Compare.
//
// A slot whose generation reaches MaxGeneration is retired when its value is
// removed: it stays vacant for the lifetime of the arena rather than letting
// the counter wrap around.
//
// # Encoding
//
// An arena encodes to a fixed two-field record (see Wire): every slot,
// vacant ones included, plus the head of the free list. Decoding restores
// the exact structure, so handles that were valid (or stale) before encoding
// are valid (or stale) afterwards. Arena implements json.Marshaler and
// gob.GobEncoder; Encode and Decode accept any codec.Codec.
//
// Package snapshot wraps the encoding in a checksummed, optionally compressed
// container and stores versions of named arenas in a blobstore.BlobStore.
//
// # Concurrency
//
// Arena does no locking. Wrap it in Synced, or guard it yourself, when several
// goroutines share one arena.
package genarena
