package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/genarena"
	"github.com/hupe1980/genarena/blobstore"
	"github.com/hupe1980/genarena/codec"
	"github.com/hupe1980/genarena/resource"
)

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	metrics := &genarena.BasicMetricsCollector{}
	s := NewStore(blobstore.NewMemoryStore(),
		WithStoreCompression(CompressionZstd),
		WithStoreCodec(codec.GoJSON{}),
		WithMetricsCollector(metrics),
	)

	a, handles := churned(t)
	info, err := Save(ctx, s, "graph/nodes", a)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.Version)
	assert.Equal(t, "go-json", info.Header.Codec)

	a.Insert(node{Name: "later"})
	info2, err := Save(ctx, s, "graph/nodes", a)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), info2.Version)

	b, loaded, err := Load[node](ctx, s, "graph/nodes")
	require.NoError(t, err)
	assert.Equal(t, info2, loaded)
	assert.Equal(t, a.Stats(), b.Stats())
	for _, h := range handles {
		wv, wok := a.Get(h)
		gv, gok := b.Get(h)
		require.Equal(t, wok, gok)
		require.Equal(t, wv, gv)
	}

	old, _, err := LoadVersion[node](ctx, s, "graph/nodes", 1)
	require.NoError(t, err)
	assert.Equal(t, a.Len()-1, old.Len())

	assert.Equal(t, int64(2), metrics.SaveCount.Load())
	assert.Equal(t, int64(2), metrics.LoadCount.Load())
	assert.Zero(t, metrics.SaveErrors.Load())
}

func TestStore_LoadMissing(t *testing.T) {
	s := NewStore(blobstore.NewMemoryStore())

	_, _, err := Load[int](context.Background(), s, "nope")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	_, _, err = LoadVersion[int](context.Background(), s, "nope", 3)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestStore_InvalidNames(t *testing.T) {
	s := NewStore(blobstore.NewMemoryStore())
	for _, name := range []string{"", ".", "..", "../x", "/abs", "a//b", `a\b`, "a/"} {
		_, err := Save(context.Background(), s, name, genarena.New[int]())
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestStore_VersionsIgnoresForeignBlobs(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemoryStore()
	s := NewStore(mem)

	for range 3 {
		_, err := Save(ctx, s, "a", genarena.New[int]())
		require.NoError(t, err)
	}
	_, err := Save(ctx, s, "a/child", genarena.New[int]())
	require.NoError(t, err)
	require.NoError(t, mem.Put(ctx, "a/notes.txt", []byte("hi")))

	versions, err := s.Versions(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, versions)

	current, err := s.Current(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), current)
}

func TestStore_Prune(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	s := NewStore(blobstore.NewMemoryStore(),
		WithLogger(genarena.NewLogger(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	)

	for range 5 {
		_, err := Save(ctx, s, "n", genarena.New[string]())
		require.NoError(t, err)
	}

	removed, err := s.Prune(ctx, "n", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	versions, err := s.Versions(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 5}, versions)
	assert.Contains(t, logs.String(), `"removed":3`)

	_, err = s.Prune(ctx, "n", 0)
	assert.Error(t, err)

	// A new save continues after the highest remaining version.
	info, err := Save(ctx, s, "n", genarena.New[string]())
	require.NoError(t, err)
	assert.Equal(t, uint64(6), info.Version)
}

func TestStore_PruneKeepsCurrent(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemoryStore()
	s := NewStore(mem)

	for range 3 {
		_, err := Save(ctx, s, "n", genarena.New[string]())
		require.NoError(t, err)
	}
	require.NoError(t, mem.Put(ctx, "n/CURRENT", []byte("1")))

	removed, err := s.Prune(ctx, "n", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	versions, err := s.Versions(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, versions)
}

func TestStore_CorruptBlob(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemoryStore()
	s := NewStore(mem)

	a, _ := churned(t)
	info, err := Save(ctx, s, "n", a)
	require.NoError(t, err)

	name := fmt.Sprintf("n/%020d.snap", info.Version)
	blob, err := mem.Open(ctx, name)
	require.NoError(t, err)
	data, err := blobstore.ReadAll(ctx, blob)
	require.NoError(t, err)
	require.NoError(t, blob.Close())

	data = bytes.Clone(data)
	data[len(data)-1] ^= 0x01
	require.NoError(t, mem.Put(ctx, name, data))

	_, _, err = Load[node](ctx, s, "n")
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	require.NoError(t, mem.Put(ctx, name, data[:HeaderSize+3]))
	_, _, err = Load[node](ctx, s, "n")
	assert.ErrorIs(t, err, ErrHeaderMismatch)

	require.NoError(t, mem.Put(ctx, name, data[:10]))
	_, _, err = Load[node](ctx, s, "n")
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestStore_MemoryLimit(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64})
	s := NewStore(blobstore.NewMemoryStore(), WithController(rc))

	a, _ := churned(t)
	_, err := Save(ctx, s, "n", a)
	require.NoError(t, err)

	_, _, err = Load[node](ctx, s, "n")
	var le *resource.LimitError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "memory", le.Resource)
	assert.Zero(t, rc.MemoryUsage())
}

func TestSaveAll(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{
		MaxBackgroundWorkers: 2,
		IOLimitBytesPerSec:   1 << 30,
	})
	s := NewStore(blobstore.NewLocalStore(t.TempDir()),
		WithController(rc),
		WithStoreCompression(CompressionLZ4),
	)

	arenas := make(map[string]*genarena.Arena[int])
	for i := range 6 {
		a := genarena.New[int]()
		for j := range i * 10 {
			a.Insert(j)
		}
		arenas[fmt.Sprintf("arena-%d", i)] = a
	}

	infos, err := SaveAll(ctx, s, arenas)
	require.NoError(t, err)
	require.Len(t, infos, len(arenas))

	for name, a := range arenas {
		assert.Equal(t, uint64(1), infos[name].Version)

		b, _, err := Load[int](ctx, s, name)
		require.NoError(t, err)
		assert.Equal(t, a.Stats(), b.Stats())
	}
}

func TestSaveAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewStore(blobstore.NewMemoryStore(), WithController(resource.NewController(resource.Config{})))
	_, err := SaveAll(ctx, s, map[string]*genarena.Arena[int]{"a": genarena.New[int]()})
	assert.ErrorIs(t, err, context.Canceled)
}

var errDiskFull = errors.New("disk full")

// flakyBlobs fails the second Write of every created blob and every Delete.
type flakyBlobs struct {
	*blobstore.MemoryStore
}

func (f *flakyBlobs) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	wb, err := f.MemoryStore.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &flakyWritable{WritableBlob: wb}, nil
}

func (f *flakyBlobs) Delete(context.Context, string) error {
	return errDiskFull
}

type flakyWritable struct {
	blobstore.WritableBlob
	writes int
}

func (w *flakyWritable) Write(p []byte) (int, error) {
	w.writes++
	if w.writes == 2 {
		return 0, errDiskFull
	}
	return w.WritableBlob.Write(p)
}

func (w *flakyWritable) Abort() error {
	return blobstore.Abort(w.WritableBlob)
}

func TestStore_FailedSaveLeavesNoVersion(t *testing.T) {
	ctx := context.Background()
	blobs := &flakyBlobs{MemoryStore: blobstore.NewMemoryStore()}
	s := NewStore(blobs)

	a := genarena.New[int]()
	a.Insert(1)

	_, err := Save(ctx, s, "x", a)
	require.ErrorIs(t, err, errDiskFull)

	versions, err := s.Versions(ctx, "x")
	require.NoError(t, err)
	assert.Empty(t, versions)

	_, err = s.Current(ctx, "x")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	names, err := blobs.List(ctx, "x/")
	require.NoError(t, err)
	assert.Empty(t, names)
}

// trackingBlobs records the peak number of blobs being written at once.
type trackingBlobs struct {
	*blobstore.MemoryStore

	mu       sync.Mutex
	inFlight int
	peak     int
}

func (s *trackingBlobs) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	wb, err := s.MemoryStore.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.inFlight++
	s.peak = max(s.peak, s.inFlight)
	s.mu.Unlock()
	return &trackedWritable{WritableBlob: wb, store: s}, nil
}

type trackedWritable struct {
	blobstore.WritableBlob
	store *trackingBlobs
}

func (w *trackedWritable) Close() error {
	time.Sleep(time.Millisecond)
	w.store.mu.Lock()
	w.store.inFlight--
	w.store.mu.Unlock()
	return w.WritableBlob.Close()
}

func TestSaveAll_BoundedWithoutController(t *testing.T) {
	blobs := &trackingBlobs{MemoryStore: blobstore.NewMemoryStore()}
	s := NewStore(blobs)

	arenas := make(map[string]*genarena.Arena[int])
	for i := range 4 * runtime.GOMAXPROCS(0) {
		a := genarena.New[int]()
		a.Insert(i)
		arenas[fmt.Sprintf("arena-%d", i)] = a
	}

	infos, err := SaveAll(context.Background(), s, arenas)
	require.NoError(t, err)
	assert.Len(t, infos, len(arenas))
	assert.LessOrEqual(t, blobs.peak, runtime.GOMAXPROCS(0))
}
