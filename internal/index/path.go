package index

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gitlethub/core/internal/errors"
)

// canonicalize resolves path to an absolute, symlink-resolved form so the
// same file is always keyed identically regardless of how it was
// referenced. If the path (or an ancestor) does not yet exist, symlink
// resolution is skipped and the absolute form is used as-is.
func canonicalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs
	}
	return resolved
}

// withinRoot reports whether resolved real path target lies within
// resolved real path root.
func withinRoot(root, target string) bool {
	return target == root || strings.HasPrefix(target, root+string(filepath.Separator))
}

// deleteWorkingTreeFile removes file from the working tree, refusing to
// operate outside root (checked on resolved real paths) and recursing
// when file is a directory.
func deleteWorkingTreeFile(root, file string) error {
	resolvedRoot := canonicalize(root)
	resolvedTarget := canonicalize(file)

	if !withinRoot(resolvedRoot, resolvedTarget) {
		return errors.New(errors.NotReadable, "%s is outside the repository working directory", file)
	}

	if _, err := os.Lstat(resolvedTarget); err != nil {
		return err
	}
	return os.RemoveAll(resolvedTarget)
}
