package objectstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitlethub/core/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "objects"), 16)
	require.NoError(t, err)
	return s
}

func TestPathForIsSharded(t *testing.T) {
	s := newTestStore(t)
	uid := "c57eff55ebc0c54973903af5f72bac72762cf4f4"
	assert.Equal(t, filepath.Join(s.root, "c5", "7eff55ebc0c54973903af5f72bac72762cf4f4"), s.PathFor(uid))
}

func TestWriteIfAbsentThenRead(t *testing.T) {
	s := newTestStore(t)
	uid := "c57eff55ebc0c54973903af5f72bac72762cf4f4"

	require.NoError(t, s.WriteIfAbsent(uid, []byte("payload")))

	got, err := s.Read(uid)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)

	_, err = os.Stat(s.PathFor(uid))
	require.NoError(t, err)
}

func TestWriteIfAbsentIsNoopWhenPresent(t *testing.T) {
	s := newTestStore(t)
	uid := "c57eff55ebc0c54973903af5f72bac72762cf4f4"

	require.NoError(t, s.WriteIfAbsent(uid, []byte("first")))
	require.NoError(t, s.WriteIfAbsent(uid, []byte("second")))

	got, err := s.Read(uid)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)
}

func TestReadMissingIsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Read("0000000000000000000000000000000000000000")
	require.Error(t, err)
	assert.Equal(t, errors.NotFound, errors.KindOf(err))
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	s := newTestStore(t)
	uid := "c57eff55ebc0c54973903af5f72bac72762cf4f4"
	require.NoError(t, s.WriteIfAbsent(uid, []byte("payload")))

	entries, err := os.ReadDir(filepath.Dir(s.PathFor(uid)))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
