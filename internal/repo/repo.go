// Package repo manages the on-disk repository layout: the ".gitlet"
// metadata directory and its fixed skeleton.
package repo

import (
	"os"
	"path/filepath"

	"github.com/gitlethub/core/internal/errors"
	"github.com/gitlethub/core/internal/index"
	"github.com/gitlethub/core/internal/objectstore"
)

const metaDirName = ".gitlet"

// Repository threads the working directory root explicitly through the
// core rather than keeping it as hidden global state (spec §9 Design
// Notes).
type Repository struct {
	Root string // absolute working directory
}

// Open resolves root to an absolute path and returns a Repository handle
// for it. It does not require ".gitlet" to already exist.
func Open(root string) (*Repository, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(errors.IO, err, "resolving repository root %s", root)
	}
	return &Repository{Root: abs}, nil
}

func (r *Repository) GitletDir() string      { return filepath.Join(r.Root, metaDirName) }
func (r *Repository) ObjectsDir() string     { return filepath.Join(r.GitletDir(), "objects") }
func (r *Repository) RefsDir() string        { return filepath.Join(r.GitletDir(), "refs") }
func (r *Repository) RefsHeadsDir() string   { return filepath.Join(r.RefsDir(), "heads") }
func (r *Repository) RefsRemotesDir() string { return filepath.Join(r.RefsDir(), "remotes") }
func (r *Repository) LogsDir() string        { return filepath.Join(r.GitletDir(), "logs") }
func (r *Repository) HeadFile() string       { return filepath.Join(r.GitletDir(), "HEAD") }
func (r *Repository) IndexDir() string       { return filepath.Join(r.GitletDir(), "index") }

// Exists reports whether this repository's ".gitlet" directory is already
// present.
func (r *Repository) Exists() bool {
	fi, err := os.Stat(r.GitletDir())
	return err == nil && fi.IsDir()
}

// Init creates the ".gitlet" skeleton, an empty HEAD pointer, and an
// empty index. Unlike the original this module was distilled from,
// directories are created recursively (os.MkdirAll), so nested
// directories always appear regardless of filesystem mkdir semantics
// (spec §9).
func (r *Repository) Init() error {
	dirs := []string{
		r.GitletDir(),
		r.ObjectsDir(),
		r.RefsDir(),
		r.RefsHeadsDir(),
		r.RefsRemotesDir(),
		r.LogsDir(),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return errors.Wrap(errors.IO, err, "creating %s", d)
		}
	}

	if err := os.WriteFile(r.HeadFile(), []byte("ref: refs/heads/main\n"), 0o644); err != nil {
		return errors.Wrap(errors.IO, err, "writing HEAD")
	}

	store, err := objectstore.New(r.ObjectsDir(), 1)
	if err != nil {
		return err
	}
	idx, err := index.LoadOrCreate(r.GitletDir(), r.Root, store, nil)
	if err != nil {
		return err
	}
	if err := idx.Save(); err != nil {
		return err
	}
	return idx.Close()
}

// ClearDirectChildren removes every direct child of dir, including the
// full contents of child directories, and leaves dir itself in place. A
// missing dir is not an error.
func ClearDirectChildren(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.IO, err, "reading %s", dir)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return errors.Wrap(errors.IO, err, "removing %s", filepath.Join(dir, e.Name()))
		}
	}
	return nil
}
