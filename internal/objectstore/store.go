// Package objectstore maps a 40-hex object identifier to a path in a
// two-level sharded layout and provides atomic write-if-absent semantics
// over it.
package objectstore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gitlethub/core/internal/errors"
)

// Store is the object store rooted at a directory (conventionally
// ".gitlet/objects"). It caches compressed object bytes by uid in front of
// the filesystem.
type Store struct {
	root  string
	cache *lru.Cache[string, []byte]
}

// New opens (creating if necessary) an object store rooted at root, with
// an in-memory cache holding up to cacheSize recently touched objects.
func New(root string, cacheSize int) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(errors.IO, err, "creating object store root %s", root)
	}

	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, errors.Wrap(errors.IO, err, "creating object cache")
	}

	return &Store{root: root, cache: cache}, nil
}

// PathFor computes the on-disk path for uid. It never touches the
// filesystem.
func (s *Store) PathFor(uid string) string {
	return filepath.Join(s.root, uid[:2], uid[2:])
}

// WriteIfAbsent writes data under uid unless an object already exists
// there. A sibling temp file is written first, then renamed into place, so
// a concurrent reader never observes a partial object. If the rename fails
// with a cross-device error, the temp file is copied into place instead,
// and that copy is not atomic.
func (s *Store) WriteIfAbsent(uid string, data []byte) error {
	path := s.PathFor(uid)

	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrap(errors.IO, err, "statting object %s", uid)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.IO, err, "creating object directory for %s", uid)
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".obj-%s.tmp", uuid.NewString()))
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return errors.Wrap(errors.IO, err, "writing temp object for %s", uid)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		if !isCrossDevice(err) {
			os.Remove(tmpPath)
			return errors.Wrap(errors.IO, err, "renaming object %s into place", uid)
		}
		// Filesystem rejected the atomic rename (temp file and target live
		// on different devices); fall back to copy-then-remove.
		if err := copyFile(tmpPath, path); err != nil {
			os.Remove(tmpPath)
			return errors.Wrap(errors.IO, err, "copying object %s into place", uid)
		}
		os.Remove(tmpPath)
	}

	s.cache.Add(uid, data)
	return nil
}

// Read returns the stored bytes for uid, or an errors.NotFound error if
// the object is absent.
func (s *Store) Read(uid string) ([]byte, error) {
	if data, ok := s.cache.Get(uid); ok {
		return data, nil
	}

	data, err := os.ReadFile(s.PathFor(uid))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.NotFound, "object %s not found", uid)
		}
		return nil, errors.Wrap(errors.IO, err, "reading object %s", uid)
	}

	s.cache.Add(uid, data)
	return data, nil
}

func isCrossDevice(err error) bool {
	linkErr, ok := err.(*os.LinkError)
	if !ok {
		return false
	}
	if runtime.GOOS == "windows" {
		return false
	}
	errno, ok := linkErr.Err.(syscall.Errno)
	return ok && errno == syscall.EXDEV
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
