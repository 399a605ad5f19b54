// Package tree builds directory tree objects from the index's effective
// working-set and persists the resulting graph to the object store.
package tree

import (
	"bytes"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gitlethub/core/internal/codec"
	"github.com/gitlethub/core/internal/errors"
	"github.com/gitlethub/core/internal/hash"
	"github.com/gitlethub/core/internal/index"
	"github.com/gitlethub/core/internal/objectstore"
)

// EmptyTreeUID is the well-known identifier of the tree with zero entries,
// shared with canonical Git despite this format's non-canonical payload
// encoding (spec §3).
const EmptyTreeUID = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

const (
	modeBlob = "100644"
	modeTree = "040000"
)

// Entry is one direct child of a Tree.
type Entry struct {
	Mode string
	Name string
	UID  string
}

// Tree is an ordered, immutable directory object.
type Tree struct {
	Name     string
	Entries  []Entry
	Raw      []byte
	UID      string
	children []*Tree // subtrees referenced by Entries, persisted before this tree
}

// Build computes the effective working-set (tracked − removed + added)
// from idx, recursively constructs the tree object graph rooted at it,
// persists every tree (children before parents), and returns the root.
// An empty working-set yields the well-known empty tree.
func Build(idx *index.Index, store *objectstore.Store, root string) (*Tree, error) {
	workingSet := effectiveWorkingSet(idx)

	relPaths := make(map[string]string, len(workingSet)) // repo-relative forward-slash path -> uid
	for absPath, uid := range workingSet {
		relPaths[toRel(root, absPath)] = uid
	}

	t, err := buildRecursive("", relPaths)
	if err != nil {
		return nil, err
	}
	if err := t.persist(store); err != nil {
		return nil, err
	}
	return t, nil
}

func effectiveWorkingSet(idx *index.Index) map[string]string {
	result := idx.Tracked()
	for p := range idx.Removed() {
		delete(result, p)
	}
	for p, uid := range idx.Added() {
		result[p] = uid
	}
	return result
}

// toRel converts an absolute path into a forward-slash repository-relative
// path. If path lies outside root (filepath.Rel fails or yields a path
// starting with ".."), the absolute path (slash-normalized) is used as a
// lexical fallback (spec's "paths outside the repository root" edge case).
func toRel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// buildRecursive partitions paths into blob entries directly under name
// and subdirectory groups, recurses on each subdirectory, and returns the
// tree for this level with its entries sorted by name and its raw bytes
// and uid computed. Nothing is persisted here; see persist.
func buildRecursive(name string, paths map[string]string) (*Tree, error) {
	var entries []Entry
	var children []*Tree
	subdirs := map[string]map[string]string{}

	for p, uid := range paths {
		if idx := strings.IndexByte(p, '/'); idx >= 0 {
			dir := p[:idx]
			rest := p[idx+1:]
			if subdirs[dir] == nil {
				subdirs[dir] = map[string]string{}
			}
			subdirs[dir][rest] = uid
			continue
		}
		entries = append(entries, Entry{Mode: modeBlob, Name: p, UID: uid})
	}

	for dirName, childPaths := range subdirs {
		child, err := buildRecursive(dirName, childPaths)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Mode: modeTree, Name: dirName, UID: child.UID})
		children = append(children, child)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	raw := encode(entries)
	return &Tree{Name: name, Entries: entries, Raw: raw, UID: hash.Sum(raw), children: children}, nil
}

func encode(entries []Entry) []byte {
	var payload bytes.Buffer
	for _, e := range entries {
		payload.WriteString(e.Mode)
		payload.WriteByte(' ')
		payload.WriteString(e.Name)
		payload.WriteByte(0)
		payload.WriteString(e.UID)
	}
	header := "tree " + strconv.Itoa(payload.Len()) + "\x00"
	raw := make([]byte, 0, len(header)+payload.Len())
	raw = append(raw, []byte(header)...)
	raw = append(raw, payload.Bytes()...)
	return raw
}

// persist writes this tree, and every tree it transitively references,
// to store, children before parents.
func (t *Tree) persist(store *objectstore.Store) error {
	for _, child := range t.children {
		if err := child.persist(store); err != nil {
			return err
		}
	}
	compressed, err := codec.Compress(t.Raw)
	if err != nil {
		return err
	}
	if err := store.WriteIfAbsent(t.UID, compressed); err != nil {
		return err
	}
	return nil
}

// Read fetches and decodes the tree stored under uid.
func Read(store *objectstore.Store, uid string) (*Tree, error) {
	if uid == EmptyTreeUID {
		return &Tree{Raw: encode(nil), UID: EmptyTreeUID}, nil
	}

	compressed, err := store.Read(uid)
	if err != nil {
		return nil, err
	}
	raw, err := codec.Decompress(compressed)
	if err != nil {
		return nil, errors.Wrap(errors.Corrupt, err, "decompressing tree %s", uid)
	}

	nul := bytes.IndexByte(raw, 0)
	if nul < 0 || !bytes.HasPrefix(raw, []byte("tree ")) {
		return nil, errors.New(errors.Corrupt, "tree %s has invalid header", uid)
	}
	payload := raw[nul+1:]

	var entries []Entry
	for len(payload) > 0 {
		modeEnd := bytes.IndexByte(payload, ' ')
		if modeEnd < 0 {
			return nil, errors.New(errors.Corrupt, "tree %s entry missing mode separator", uid)
		}
		mode := string(payload[:modeEnd])
		rest := payload[modeEnd+1:]

		nameEnd := bytes.IndexByte(rest, 0)
		if nameEnd < 0 {
			return nil, errors.New(errors.Corrupt, "tree %s entry missing name terminator", uid)
		}
		name := string(rest[:nameEnd])
		rest = rest[nameEnd+1:]

		if len(rest) < 40 {
			return nil, errors.New(errors.Corrupt, "tree %s entry has truncated child uid", uid)
		}
		childUID := string(rest[:40])
		payload = rest[40:]

		entries = append(entries, Entry{Mode: mode, Name: name, UID: childUID})
	}

	return &Tree{Entries: entries, Raw: raw, UID: uid}, nil
}
