package tree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitlethub/core/internal/index"
	"github.com/gitlethub/core/internal/objectstore"
)

func newFixture(t *testing.T) (*index.Index, *objectstore.Store, string) {
	root := t.TempDir()
	store, err := objectstore.New(filepath.Join(root, "objects"), 16)
	require.NoError(t, err)

	idx, err := index.LoadOrCreate(filepath.Join(root, ".gitlet"), root, store, nil)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	return idx, store, root
}

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuildEmptyWorkingSetIsWellKnownEmptyTree(t *testing.T) {
	idx, store, root := newFixture(t)

	tr, err := Build(idx, store, root)
	require.NoError(t, err)
	assert.Equal(t, EmptyTreeUID, tr.UID)
	assert.Empty(t, tr.Entries)
}

func TestBuildIsOrderIndependent(t *testing.T) {
	idxA, storeA, rootA := newFixture(t)
	pathA1 := writeFile(t, rootA, "a.txt", "A")
	pathA2 := writeFile(t, rootA, "b.txt", "B")
	require.NoError(t, idxA.Add(pathA1))
	require.NoError(t, idxA.Add(pathA2))
	treeA, err := Build(idxA, storeA, rootA)
	require.NoError(t, err)

	idxB, storeB, rootB := newFixture(t)
	pathB2 := writeFile(t, rootB, "b.txt", "B")
	pathB1 := writeFile(t, rootB, "a.txt", "A")
	require.NoError(t, idxB.Add(pathB2))
	require.NoError(t, idxB.Add(pathB1))
	treeB, err := Build(idxB, storeB, rootB)
	require.NoError(t, err)

	assert.Equal(t, treeA.UID, treeB.UID)
	require.Len(t, treeA.Entries, 2)
	assert.Equal(t, "a.txt", treeA.Entries[0].Name)
	assert.Equal(t, "b.txt", treeA.Entries[1].Name)
}

func TestBuildNestedTreeShape(t *testing.T) {
	idx, store, root := newFixture(t)

	readme := writeFile(t, root, "README.md", "readme")
	javaA := writeFile(t, root, "src/A.java", "a")
	javaB := writeFile(t, root, "src/util/B.java", "b")

	require.NoError(t, idx.Add(readme))
	require.NoError(t, idx.Add(javaA))
	require.NoError(t, idx.Add(javaB))

	rootTree, err := Build(idx, store, root)
	require.NoError(t, err)

	require.Len(t, rootTree.Entries, 2)
	assert.Equal(t, "README.md", rootTree.Entries[0].Name)
	assert.Equal(t, modeBlob, rootTree.Entries[0].Mode)
	assert.Equal(t, "src", rootTree.Entries[1].Name)
	assert.Equal(t, modeTree, rootTree.Entries[1].Mode)

	srcTree, err := Read(store, rootTree.Entries[1].UID)
	require.NoError(t, err)
	require.Len(t, srcTree.Entries, 2)
	assert.Equal(t, "A.java", srcTree.Entries[0].Name)
	assert.Equal(t, modeBlob, srcTree.Entries[0].Mode)
	assert.Equal(t, "util", srcTree.Entries[1].Name)
	assert.Equal(t, modeTree, srcTree.Entries[1].Mode)

	utilTree, err := Read(store, srcTree.Entries[1].UID)
	require.NoError(t, err)
	require.Len(t, utilTree.Entries, 1)
	assert.Equal(t, "B.java", utilTree.Entries[0].Name)
	assert.Equal(t, modeBlob, utilTree.Entries[0].Mode)
}

func TestBuildPersistsTreesDurably(t *testing.T) {
	idx, store, root := newFixture(t)
	path := writeFile(t, root, "a.txt", "A")
	require.NoError(t, idx.Add(path))

	tr, err := Build(idx, store, root)
	require.NoError(t, err)

	readBack, err := Read(store, tr.UID)
	require.NoError(t, err)
	assert.Equal(t, tr.Entries, readBack.Entries)
}

func TestReadEmptyTreeUIDWithoutStoreHit(t *testing.T) {
	tr, err := Read(nil, EmptyTreeUID)
	require.NoError(t, err)
	assert.Empty(t, tr.Entries)
}
