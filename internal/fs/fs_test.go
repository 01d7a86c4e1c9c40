package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	src := filepath.Join(dir, "a.tmp")
	f, err := lfs.OpenFile(src, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	require.NoError(t, err)
	assert.Equal(t, src, f.Name())

	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	dst := filepath.Join(dir, "a")
	require.NoError(t, lfs.Rename(src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, lfs.Remove(dst))
	_, err = lfs.OpenFile(dst, os.O_RDONLY, 0)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFaultyFS_WriteLimit(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.AddRule(".snap", Fault{FailAfterBytes: 4})

	f, err := ffs.OpenFile(filepath.Join(tmp, "1.snap"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte("abc"))
	require.NoError(t, err)
	_, err = f.Write([]byte("de"))
	assert.ErrorIs(t, err, ErrInjected)

	// Files that match no rule are untouched.
	g, err := ffs.OpenFile(filepath.Join(tmp, "CURRENT"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = g.Write([]byte("0123456789"))
	require.NoError(t, err)
	require.NoError(t, g.Close())
}

func TestFaultyFS_LastRuleWins(t *testing.T) {
	tmp := t.TempDir()
	boom := errors.New("boom")

	ffs := NewFaultyFS(LocalFS{})
	ffs.AddRule("a", Fault{FailAfterBytes: -1, FailOnSync: true})
	ffs.AddRule("ab", Fault{FailAfterBytes: -1, FailOnClose: true, FailOnRename: true, Err: boom})

	f, err := ffs.OpenFile(filepath.Join(tmp, "abc"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	assert.ErrorIs(t, f.Close(), boom)

	assert.ErrorIs(t, ffs.Rename(filepath.Join(tmp, "abc"), filepath.Join(tmp, "x")), boom)

	g, err := ffs.OpenFile(filepath.Join(tmp, "a"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	assert.ErrorIs(t, g.Sync(), ErrInjected)
	require.NoError(t, g.Close())
}
