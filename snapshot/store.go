package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/genarena"
	"github.com/hupe1980/genarena/blobstore"
	"github.com/hupe1980/genarena/codec"
	"github.com/hupe1980/genarena/resource"
)

const (
	// CurrentName is the per-arena blob holding the current version number.
	CurrentName = "CURRENT"
	// Ext is the extension of snapshot blobs.
	Ext = ".snap"
)

// ErrInvalidName is returned for arena names that cannot be stored.
var ErrInvalidName = errors.New("snapshot: invalid arena name")

// Info describes a stored snapshot.
type Info struct {
	Name    string `json:"name"`
	Version uint64 `json:"version"`
	// Size is the blob size in bytes, header included.
	Size   int64  `json:"size"`
	Header Header `json:"header"`
}

type storeOptions struct {
	codec       codec.Codec
	compression Compression
	logger      *genarena.Logger
	metrics     genarena.MetricsCollector
	controller  *resource.Controller
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

// WithStoreCodec sets the codec for saved snapshots.
func WithStoreCodec(c codec.Codec) StoreOption {
	return func(o *storeOptions) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithStoreCompression sets the compression for saved snapshots.
func WithStoreCompression(c Compression) StoreOption {
	return func(o *storeOptions) {
		o.compression = c
	}
}

// WithLogger sets the store's logger.
func WithLogger(l *genarena.Logger) StoreOption {
	return func(o *storeOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector sets the store's metrics collector.
func WithMetricsCollector(m genarena.MetricsCollector) StoreOption {
	return func(o *storeOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithController bounds IO, buffer memory and SaveAll concurrency.
func WithController(rc *resource.Controller) StoreOption {
	return func(o *storeOptions) {
		o.controller = rc
	}
}

// Store persists numbered snapshot versions of named arenas.
//
// Layout per arena name:
//
//	<name>/00000000000000000001.snap
//	<name>/00000000000000000002.snap
//	<name>/CURRENT   -> "2"
//
// Saves of the same name are serialized within a Store. Concurrent writers in
// other processes need a store with conditional CURRENT commits, such as
// s3.DDBCommitStore.
type Store struct {
	blobs blobstore.BlobStore
	opts  storeOptions
	locks sync.Map // name -> *sync.Mutex
}

// NewStore creates a snapshot store over blobs.
func NewStore(blobs blobstore.BlobStore, opts ...StoreOption) *Store {
	o := storeOptions{
		codec:   codec.Default,
		logger:  genarena.NoopLogger(),
		metrics: genarena.NoopMetricsCollector{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{blobs: blobs, opts: o}
}

// Blobs returns the underlying blob store.
func (s *Store) Blobs() blobstore.BlobStore {
	return s.blobs
}

func (s *Store) lock(name string) func() {
	v, _ := s.locks.LoadOrStore(name, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func checkName(name string) error {
	if name == "" || name == "." || path.Clean(name) != name || path.IsAbs(name) ||
		name == ".." || strings.HasPrefix(name, "../") || strings.Contains(name, `\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func blobName(name string, version uint64) string {
	return fmt.Sprintf("%s/%020d%s", name, version, Ext)
}

func currentName(name string) string {
	return name + "/" + CurrentName
}

// Versions returns the stored versions of name in ascending order.
func (s *Store) Versions(ctx context.Context, name string) ([]uint64, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	blobs, err := s.blobs.List(ctx, name+"/")
	if err != nil {
		return nil, err
	}

	var versions []uint64
	for _, b := range blobs {
		base, ok := strings.CutSuffix(strings.TrimPrefix(b, name+"/"), Ext)
		if !ok || strings.Contains(base, "/") {
			continue
		}
		v, err := strconv.ParseUint(base, 10, 64)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	slices.Sort(versions)
	return versions, nil
}

// Current returns the version CURRENT points to.
// It returns blobstore.ErrNotFound if name was never saved.
func (s *Store) Current(ctx context.Context, name string) (uint64, error) {
	if err := checkName(name); err != nil {
		return 0, err
	}

	blob, err := s.blobs.Open(ctx, currentName(name))
	if err != nil {
		return 0, err
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("snapshot: invalid %s for %q: %w", CurrentName, name, err)
	}
	return v, nil
}

// Stat reads the header of a stored version without loading the payload.
func (s *Store) Stat(ctx context.Context, name string, version uint64) (Info, error) {
	if err := checkName(name); err != nil {
		return Info{}, err
	}

	blob, err := s.blobs.Open(ctx, blobName(name, version))
	if err != nil {
		return Info{}, err
	}
	defer blob.Close()

	h, err := readBlobHeader(ctx, blob)
	if err != nil {
		return Info{}, err
	}
	return Info{Name: name, Version: version, Size: blob.Size(), Header: h}, nil
}

func readBlobHeader(ctx context.Context, blob blobstore.Blob) (Header, error) {
	buf := make([]byte, HeaderSize)
	n, err := blob.ReadAt(ctx, buf, 0)
	if n < HeaderSize {
		if err == nil || errors.Is(err, io.EOF) {
			return Header{}, fmt.Errorf("%w: header: %d of %d bytes", ErrTruncated, n, HeaderSize)
		}
		return Header{}, err
	}

	var h Header
	if err := h.UnmarshalBinary(buf); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Save stores a as the next version of name and moves CURRENT to it.
func Save[T any](ctx context.Context, s *Store, name string, a *genarena.Arena[T]) (info Info, err error) {
	start := time.Now()
	defer func() {
		s.opts.logger.LogSave(ctx, name, info.Version, int(info.Size), time.Since(start), err)
		s.opts.metrics.RecordSave(int(info.Size), time.Since(start), err)
	}()

	if err := checkName(name); err != nil {
		return Info{}, err
	}
	unlock := s.lock(name)
	defer unlock()

	h, stored, err := Encode(a, WithCodec(s.opts.codec), WithCompression(s.opts.compression))
	if err != nil {
		return Info{}, err
	}
	hdr, err := h.MarshalBinary()
	if err != nil {
		return Info{}, err
	}

	versions, err := s.Versions(ctx, name)
	if err != nil {
		return Info{}, err
	}
	version := uint64(1)
	if len(versions) > 0 {
		version = versions[len(versions)-1] + 1
	}

	if err := s.writeBlob(ctx, blobName(name, version), hdr, stored); err != nil {
		return Info{}, err
	}
	if err := s.blobs.Put(ctx, currentName(name), []byte(strconv.FormatUint(version, 10))); err != nil {
		return Info{}, fmt.Errorf("snapshot: commit %s version %d: %w", name, version, err)
	}

	return Info{
		Name:    name,
		Version: version,
		Size:    int64(len(hdr) + len(stored)),
		Header:  h,
	}, nil
}

func (s *Store) writeBlob(ctx context.Context, blob string, parts ...[]byte) (err error) {
	wb, err := s.blobs.Create(ctx, blob)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if err == nil {
			return
		}
		if _, ok := wb.(blobstore.Aborter); ok && !committed {
			_ = blobstore.Abort(wb)
			return
		}
		if !committed {
			_ = wb.Close()
		}
		_ = s.blobs.Delete(context.WithoutCancel(ctx), blob)
	}()

	w := resource.NewRateLimitedWriter(ctx, wb, s.opts.controller)
	for _, p := range parts {
		if _, err := io.Copy(w, bytes.NewReader(p)); err != nil {
			return fmt.Errorf("snapshot: write %s: %w", blob, err)
		}
	}
	if err := wb.Sync(); err != nil {
		return err
	}
	committed = true
	return wb.Close()
}

// Load decodes the version CURRENT points to.
func Load[T any](ctx context.Context, s *Store, name string, opts ...genarena.Option) (*genarena.Arena[T], Info, error) {
	version, err := s.Current(ctx, name)
	if err != nil {
		return nil, Info{Name: name}, fmt.Errorf("snapshot: load %q: %w", name, err)
	}
	return LoadVersion[T](ctx, s, name, version, opts...)
}

// LoadVersion decodes a specific stored version.
func LoadVersion[T any](ctx context.Context, s *Store, name string, version uint64, opts ...genarena.Option) (a *genarena.Arena[T], info Info, err error) {
	start := time.Now()
	defer func() {
		var stats genarena.Stats
		if a != nil {
			stats = a.Stats()
		}
		s.opts.logger.LogLoad(ctx, name, version, stats, time.Since(start), err)
		s.opts.metrics.RecordLoad(int(info.Size), time.Since(start), err)
	}()

	info, err = s.Stat(ctx, name, version)
	if err != nil {
		return nil, info, err
	}
	h := info.Header
	if h.StoredSize != uint64(info.Size-int64(HeaderSize)) || h.RawSize > math.MaxInt64/2 {
		return nil, info, fmt.Errorf("%w: blob has %d payload bytes, header says %d stored, %d raw",
			ErrHeaderMismatch, info.Size-int64(HeaderSize), h.StoredSize, h.RawSize)
	}

	// The stored payload and its decompressed form are held at once.
	budget := int64(h.StoredSize) + int64(h.RawSize)
	if err := s.opts.controller.AcquireMemory(ctx, budget); err != nil {
		return nil, info, err
	}
	defer s.opts.controller.ReleaseMemory(budget)

	blob, err := s.blobs.Open(ctx, blobName(name, version))
	if err != nil {
		return nil, info, err
	}
	defer blob.Close()

	rc, err := blob.ReadRange(ctx, int64(HeaderSize), blob.Size()-int64(HeaderSize))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, info, fmt.Errorf("%w: payload: %w", ErrTruncated, err)
		}
		return nil, info, err
	}
	defer rc.Close()

	stored, err := ReadPayload(resource.NewRateLimitedReader(ctx, rc, s.opts.controller), h)
	if err != nil {
		return nil, info, err
	}
	a, err = DecodePayload[T](h, stored, opts...)
	if err != nil {
		return nil, info, err
	}
	return a, info, nil
}

// Prune deletes all but the newest keep versions of name. The version
// CURRENT points to is never deleted. It returns the number of deleted
// versions.
func (s *Store) Prune(ctx context.Context, name string, keep int) (removed int, err error) {
	defer func() {
		s.opts.logger.LogPrune(ctx, name, removed, err)
		s.opts.metrics.RecordPrune(removed, err)
	}()

	if keep < 1 {
		return 0, fmt.Errorf("snapshot: prune %q: keep must be at least 1, got %d", name, keep)
	}

	versions, err := s.Versions(ctx, name)
	if err != nil {
		return 0, err
	}
	if len(versions) <= keep {
		return 0, nil
	}

	current, err := s.Current(ctx, name)
	if err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		return 0, err
	}

	for _, v := range versions[:len(versions)-keep] {
		if v == current {
			continue
		}
		if err := s.blobs.Delete(ctx, blobName(name, v)); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// SaveAll saves every arena concurrently. Concurrency is bounded by the
// controller's background slots, or by GOMAXPROCS when the store has no
// controller. On failure the first error is returned together with the
// snapshots that were saved.
func SaveAll[T any](ctx context.Context, s *Store, arenas map[string]*genarena.Arena[T]) (map[string]Info, error) {
	var mu sync.Mutex
	infos := make(map[string]Info, len(arenas))

	g, gctx := errgroup.WithContext(ctx)
	if s.opts.controller == nil {
		g.SetLimit(runtime.GOMAXPROCS(0))
	}
	for name, a := range arenas {
		g.Go(func() error {
			if err := s.opts.controller.AcquireBackground(gctx); err != nil {
				return err
			}
			defer s.opts.controller.ReleaseBackground()

			info, err := Save(gctx, s, name, a)
			if err != nil {
				return err
			}

			mu.Lock()
			infos[name] = info
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	return infos, err
}
