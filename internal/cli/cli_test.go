package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/genarena"
	"github.com/hupe1980/genarena/blobstore"
	"github.com/hupe1980/genarena/codec"
	"github.com/hupe1980/genarena/snapshot"
)

type user struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func testArena() *genarena.Arena[user] {
	a := genarena.New[user]()
	for i := range 50 {
		a.Insert(user{Name: "user", Age: i})
	}
	a.RemoveIndex(3)
	a.RemoveIndex(7)
	return a
}

func writeSnapshot(t *testing.T, opts ...snapshot.Option) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "users.snap")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = snapshot.Write(f, testArena(), opts...)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := NewRootCmd(&stdout, &stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestInspect(t *testing.T) {
	path := writeSnapshot(t, snapshot.WithCompression(snapshot.CompressionZstd))

	out, _, err := run(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "go-json")
	assert.Contains(t, out, "zstd")
	assert.Contains(t, out, "Live")
	assert.Contains(t, out, "48")
}

func TestInspect_NotASnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 100), 0o600))

	_, _, err := run(t, "inspect", path)
	assert.ErrorIs(t, err, snapshot.ErrInvalidMagic)
}

func TestVerify(t *testing.T) {
	path := writeSnapshot(t, snapshot.WithCodec(codec.JSON{}), snapshot.WithCompression(snapshot.CompressionLZ4))

	out, _, err := run(t, "verify", "-v", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Occupied")
	assert.Contains(t, out, "48")
}

func TestVerify_GobNeedsValueType(t *testing.T) {
	path := writeSnapshot(t, snapshot.WithCodec(codec.Gob{}))

	_, _, err := run(t, "verify", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `codec "gob"`)
}

func TestVerify_Corrupt(t *testing.T) {
	path := writeSnapshot(t)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-2] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, _, err = run(t, "verify", path)
	assert.ErrorIs(t, err, snapshot.ErrChecksumMismatch)
}

func TestConvert(t *testing.T) {
	in := writeSnapshot(t, snapshot.WithCompression(snapshot.CompressionNone))
	out := filepath.Join(t.TempDir(), "users.zst.snap")

	_, _, err := run(t, "convert", in, out, "--compression", "zstd", "--codec", "json")
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	a, h, err := snapshot.Read[user](f)
	require.NoError(t, err)
	assert.Equal(t, "json", h.Codec)
	assert.Equal(t, snapshot.CompressionZstd, h.Compression)
	assert.Equal(t, testArena().Stats(), a.Stats())

	want := testArena()
	for hd, v := range want.All() {
		got, ok := a.Get(hd)
		require.True(t, ok)
		assert.Equal(t, *v, got)
	}
}

func TestConvert_RejectsGobTarget(t *testing.T) {
	in := writeSnapshot(t)
	_, _, err := run(t, "convert", in, filepath.Join(t.TempDir(), "out"), "--codec", "gob")
	assert.ErrorContains(t, err, "unsupported target codec")

	_, _, err = run(t, "convert", in, filepath.Join(t.TempDir(), "out"), "--compression", "brotli")
	assert.ErrorIs(t, err, snapshot.ErrUnknownCompression)
}

func TestStoreCommands(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	store := snapshot.NewStore(blobstore.NewLocalStore(dir))
	for range 4 {
		_, err := snapshot.Save(ctx, store, "users", testArena())
		require.NoError(t, err)
	}

	out, _, err := run(t, "ls", "--dir", dir, "users")
	require.NoError(t, err)
	assert.Contains(t, out, "4 versions")
	assert.Contains(t, out, "*")

	out, _, err = run(t, "verify", "--dir", dir, "--version", "2", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "48")

	_, _, err = run(t, "verify", "--dir", dir, "--memory-limit", "16B", "users")
	assert.ErrorContains(t, err, "memory")

	out, _, err = run(t, "prune", "--dir", dir, "--keep", "1", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 3 versions of users")

	versions, err := store.Versions(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, []uint64{4}, versions)
}

func TestStoreFlags_Exclusive(t *testing.T) {
	_, _, err := run(t, "ls", "--dir", "x", "--s3-bucket", "y", "users")
	assert.Error(t, err)

	_, _, err = run(t, "ls", "users")
	assert.ErrorContains(t, err, "--dir or --s3-bucket")

	_, _, err = run(t, "ls", "--s3-bucket", "b", "--minio", "users")
	assert.ErrorContains(t, err, "--endpoint")
}

func TestVersionFlag(t *testing.T) {
	SetVersion("v1.2.3", "abc123")
	t.Cleanup(func() { SetVersion("dev", "") })

	out, _, err := run(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "arenactl v1.2.3 (commit: abc123)\n", out)
}
