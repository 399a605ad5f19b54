// Package index implements the staging area: the added/removed/tracked
// bookkeeping that backs "add" and "remove", persisted to an embedded
// Badger database rooted at ".gitlet/index".
package index

import (
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"github.com/gitlethub/core/internal/blob"
	"github.com/gitlethub/core/internal/errors"
	"github.com/gitlethub/core/internal/logging"
	"github.com/gitlethub/core/internal/objectstore"
)

const schemaVersion = byte(1)

const (
	prefixAdded   = "added:"
	prefixRemoved = "removed:"
	prefixTracked = "tracked:"
	keyVersion    = "schema:version"
)

// Index is the staging area. added/removed/tracked are all keyed by
// canonicalized absolute path strings.
type Index struct {
	dbDir string
	root  string // repository working directory root; bounds Remove's deletions
	db    *badger.DB
	store *objectstore.Store
	sink  logging.Sink

	added   map[string]string
	removed map[string]struct{}
	tracked map[string]string
}

func empty(dbDir, root string, store *objectstore.Store, sink logging.Sink) *Index {
	return &Index{
		dbDir:   dbDir,
		root:    root,
		store:   store,
		sink:    sink,
		added:   map[string]string{},
		removed: map[string]struct{}{},
		tracked: map[string]string{},
	}
}

// LoadOrCreate opens the index database under gitletDir/index, loading its
// state if present. root is the repository's working directory root,
// used to bound Remove's working-tree deletions. Any deserialization
// failure — a corrupt database, a version mismatch — is recovered to an
// empty in-memory index; the on-disk state is never deleted as a result,
// and sink (if non-nil) receives a warning.
func LoadOrCreate(gitletDir, root string, store *objectstore.Store, sink logging.Sink) (*Index, error) {
	if sink == nil {
		sink = logging.Noop
	}
	dbDir := filepath.Join(gitletDir, "index")

	opts := badger.DefaultOptions(dbDir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		sink.Warn("index: failed to open store, starting with an empty index",
			logging.F("dir", dbDir), logging.F("error", err.Error()))
		return empty(dbDir, root, store, sink), nil
	}

	idx := empty(dbDir, root, store, sink)
	idx.db = db

	if err := idx.load(); err != nil {
		sink.Warn("index: failed to deserialize state, starting with an empty index",
			logging.F("dir", dbDir), logging.F("error", err.Error()))
		idx.added = map[string]string{}
		idx.removed = map[string]struct{}{}
		idx.tracked = map[string]string{}
	}

	return idx, nil
}

func (idx *Index) load() error {
	return idx.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())

			switch {
			case key == keyVersion:
				if err := item.Value(func(val []byte) error {
					if len(val) != 1 || val[0] != schemaVersion {
						return errors.New(errors.IO, "unrecognized index schema version %v", val)
					}
					return nil
				}); err != nil {
					return err
				}
			case len(key) > len(prefixAdded) && key[:len(prefixAdded)] == prefixAdded:
				path := key[len(prefixAdded):]
				if err := item.Value(func(val []byte) error {
					idx.added[path] = string(val)
					return nil
				}); err != nil {
					return err
				}
			case len(key) > len(prefixRemoved) && key[:len(prefixRemoved)] == prefixRemoved:
				idx.removed[key[len(prefixRemoved):]] = struct{}{}
			case len(key) > len(prefixTracked) && key[:len(prefixTracked)] == prefixTracked:
				path := key[len(prefixTracked):]
				if err := item.Value(func(val []byte) error {
					idx.tracked[path] = string(val)
					return nil
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Save persists the current in-memory state, replacing whatever was
// previously stored.
func (idx *Index) Save() error {
	if idx.db == nil {
		opts := badger.DefaultOptions(idx.dbDir).WithLogger(nil)
		db, err := badger.Open(opts)
		if err != nil {
			return errors.Wrap(errors.IO, err, "opening index store at %s", idx.dbDir)
		}
		idx.db = db
	}

	wb := idx.db.NewWriteBatch()
	defer wb.Cancel()

	if err := idx.clearPrefixes(wb); err != nil {
		return errors.Wrap(errors.IO, err, "clearing previous index state")
	}

	if err := wb.Set([]byte(keyVersion), []byte{schemaVersion}); err != nil {
		return errors.Wrap(errors.IO, err, "writing index schema version")
	}
	for path, uid := range idx.added {
		if err := wb.Set([]byte(prefixAdded+path), []byte(uid)); err != nil {
			return errors.Wrap(errors.IO, err, "writing added entry for %s", path)
		}
	}
	for path := range idx.removed {
		if err := wb.Set([]byte(prefixRemoved+path), []byte{1}); err != nil {
			return errors.Wrap(errors.IO, err, "writing removed entry for %s", path)
		}
	}
	for path, uid := range idx.tracked {
		if err := wb.Set([]byte(prefixTracked+path), []byte(uid)); err != nil {
			return errors.Wrap(errors.IO, err, "writing tracked entry for %s", path)
		}
	}

	if err := wb.Flush(); err != nil {
		return errors.Wrap(errors.IO, err, "flushing index store")
	}
	return nil
}

func (idx *Index) clearPrefixes(wb *badger.WriteBatch) error {
	return idx.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			if err := wb.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close releases the underlying database handle.
func (idx *Index) Close() error {
	if idx.db == nil {
		return nil
	}
	return idx.db.Close()
}

// Add stages an addition or modification of file, or unstages a previously
// staged identical-to-HEAD change.
func (idx *Index) Add(file string) error {
	fi, statErr := os.Stat(file)
	if statErr != nil || !fi.Mode().IsRegular() {
		return errors.New(errors.NotReadable, "%s is not a readable regular file", filepath.Base(file))
	}

	p := canonicalize(file)

	newUID, err := blob.ComputeUID(file)
	if err != nil {
		return err
	}

	delete(idx.removed, p)

	if headUID, ok := idx.tracked[p]; ok && headUID == newUID {
		delete(idx.added, p)
		return idx.Save()
	}

	b, err := blob.FromFile(file)
	if err != nil {
		return err
	}
	if err := b.Persist(idx.store); err != nil {
		return err
	}

	idx.added[p] = newUID
	return idx.Save()
}

// Remove unstages/stages a deletion of file per spec §4.5, optionally
// deleting the working-tree copy.
func (idx *Index) Remove(file string, force, cached bool) error {
	p := canonicalize(file)
	_, statErr := os.Stat(file)
	exists := statErr == nil

	trackedUID, isTracked := idx.tracked[p]
	_, isStagedAdd := idx.added[p]

	if !isTracked && !isStagedAdd {
		return errors.New(errors.PathspecNoMatch, "pathspec '%s' did not match any files", filepath.Base(file))
	}

	if isTracked && exists && !force {
		workingUID, err := blob.ComputeUID(file)
		if err != nil {
			return err
		}
		if workingUID != trackedUID {
			return errors.New(errors.HasLocalModifications, "'%s' has local modifications; use force to remove", filepath.Base(file))
		}
	}

	if isStagedAdd {
		delete(idx.added, p)
	}
	if isTracked {
		idx.removed[p] = struct{}{}
	}

	if !cached && exists {
		if err := deleteWorkingTreeFile(idx.root, file); err != nil {
			return errors.Wrap(errors.IO, err, "deleting %s", file)
		}
	}

	return idx.Save()
}

// CleanStageArea empties added and removed, leaving tracked untouched.
func (idx *Index) CleanStageArea() error {
	idx.added = map[string]string{}
	idx.removed = map[string]struct{}{}
	return idx.Save()
}

// ApplyHeadSnapshot replaces tracked wholesale with a canonicalized copy
// of newTracked.
func (idx *Index) ApplyHeadSnapshot(newTracked map[string]string) error {
	fresh := make(map[string]string, len(newTracked))
	for path, uid := range newTracked {
		fresh[canonicalize(path)] = uid
	}
	idx.tracked = fresh
	return idx.Save()
}

// ModifiedPaths returns, keyed by path, the current content hash of every
// tracked path whose working-tree file still exists and differs from the
// tracked snapshot. It backs the status view; Remove makes the same
// comparison for its single file without calling this.
func (idx *Index) ModifiedPaths() (map[string]string, error) {
	modified := make(map[string]string)
	for path, headUID := range idx.tracked {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		workingUID, err := blob.ComputeUID(path)
		if err != nil {
			return nil, err
		}
		if workingUID != headUID {
			modified[path] = workingUID
		}
	}
	return modified, nil
}

// Added returns a copy of the staged-addition map.
func (idx *Index) Added() map[string]string { return copyMap(idx.added) }

// Removed returns a copy of the staged-deletion set.
func (idx *Index) Removed() map[string]struct{} {
	out := make(map[string]struct{}, len(idx.removed))
	for k := range idx.removed {
		out[k] = struct{}{}
	}
	return out
}

// Tracked returns a copy of the HEAD snapshot.
func (idx *Index) Tracked() map[string]string { return copyMap(idx.tracked) }

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
