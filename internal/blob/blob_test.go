package blob

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitlethub/core/internal/errors"
	"github.com/gitlethub/core/internal/objectstore"
)

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newStore(t *testing.T) *objectstore.Store {
	s, err := objectstore.New(filepath.Join(t.TempDir(), "objects"), 16)
	require.NoError(t, err)
	return s
}

func TestFromFileHelloWorld(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "testBlob.txt", "Hello World!")

	b, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "c57eff55ebc0c54973903af5f72bac72762cf4f4", b.UID())
	assert.Equal(t, "testBlob.txt", b.Name())
	assert.Equal(t, []byte("Hello World!"), b.Content())
}

func TestFromFileEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.txt", "")

	b, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391", b.UID())
}

func TestComputeUIDMatchesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "some content")

	b, err := FromFile(path)
	require.NoError(t, err)

	uid, err := ComputeUID(path)
	require.NoError(t, err)
	assert.Equal(t, b.UID(), uid)
}

func TestFromFileMissingIsNotReadable(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Equal(t, errors.NotReadable, errors.KindOf(err))
}

func TestFromFileDirectoryIsNotReadable(t *testing.T) {
	_, err := FromFile(t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errors.NotReadable, errors.KindOf(err))
}

func TestPersistThenReadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "testBlob.txt", "Hello World!")
	store := newStore(t)

	b, err := FromFile(path)
	require.NoError(t, err)
	require.NoError(t, b.Persist(store))

	// Re-persisting is a no-op and must not raise.
	require.NoError(t, b.Persist(store))

	readBack, err := Read(store, b.UID())
	require.NoError(t, err)
	assert.Equal(t, b.Content(), readBack.Content())
	assert.Equal(t, "", readBack.Name())
	assert.True(t, b.Equal(&Blob{uid: b.UID()}))
}

func TestPersistWritesObjectAtShardedPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "testBlob.txt", "Hello World!")
	objRoot := filepath.Join(t.TempDir(), "objects")
	store, err := objectstore.New(objRoot, 16)
	require.NoError(t, err)

	b, err := FromFile(path)
	require.NoError(t, err)
	require.NoError(t, b.Persist(store))

	_, err = os.Stat(filepath.Join(objRoot, "c5", "7eff55ebc0c54973903af5f72bac72762cf4f4"))
	require.NoError(t, err)
}

func TestReadMissingIsNotFound(t *testing.T) {
	store := newStore(t)
	_, err := Read(store, "0000000000000000000000000000000000000000")
	require.Error(t, err)
	assert.Equal(t, errors.NotFound, errors.KindOf(err))
}

func TestReadCorruptPayloadIsCorrupt(t *testing.T) {
	store := newStore(t)
	uid := "0000000000000000000000000000000000000000"
	require.NoError(t, store.WriteIfAbsent(uid, []byte("not a deflate stream")))

	_, err := Read(store, uid)
	require.Error(t, err)
	assert.Equal(t, errors.Corrupt, errors.KindOf(err))
}
