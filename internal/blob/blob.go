// Package blob implements the blob object: a snapshot of one file's bytes,
// framed with a canonical "blob <len>\0" header and named by the SHA-1 of
// that framed byte sequence.
package blob

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gitlethub/core/internal/codec"
	"github.com/gitlethub/core/internal/errors"
	"github.com/gitlethub/core/internal/hash"
	"github.com/gitlethub/core/internal/objectstore"
)

// Blob is an immutable snapshot of a file's content once built or read
// back from the store.
type Blob struct {
	raw  []byte
	uid  string
	name string // working-tree basename; empty when read back from the store
}

func header(size int) []byte {
	return []byte("blob " + strconv.Itoa(size) + "\x00")
}

func buildRaw(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return nil, errors.New(errors.NotReadable, "%s is not a readable regular file", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.NotReadable, err, "reading %s", path)
	}

	raw := make([]byte, 0, len(content)+16)
	raw = append(raw, header(len(content))...)
	raw = append(raw, content...)
	return raw, nil
}

// FromFile reads path fully and builds its blob, computing uid.
func FromFile(path string) (*Blob, error) {
	raw, err := buildRaw(path)
	if err != nil {
		return nil, err
	}
	return &Blob{raw: raw, uid: hash.Sum(raw), name: filepath.Base(path)}, nil
}

// ComputeUID is equivalent to FromFile(path).UID() but never constructs
// (and does not persist) a Blob.
func ComputeUID(path string) (string, error) {
	raw, err := buildRaw(path)
	if err != nil {
		return "", err
	}
	return hash.Sum(raw), nil
}

// Persist compresses raw once and writes it to store under uid, a no-op if
// already present.
func (b *Blob) Persist(store *objectstore.Store) error {
	compressed, err := codec.Compress(b.raw)
	if err != nil {
		return err
	}
	if err := store.WriteIfAbsent(b.uid, compressed); err != nil {
		return err
	}
	return nil
}

// Read fetches, decompresses, and verifies the blob stored under uid. The
// returned Blob's Name is empty: the filename was never part of the
// object's identity.
func Read(store *objectstore.Store, uid string) (*Blob, error) {
	if len(uid) != 40 {
		return nil, errors.New(errors.Corrupt, "invalid uid length %d", len(uid))
	}

	compressed, err := store.Read(uid)
	if err != nil {
		return nil, err
	}

	raw, err := codec.Decompress(compressed)
	if err != nil {
		return nil, errors.Wrap(errors.Corrupt, err, "decompressing blob %s", uid)
	}

	nul := bytes.IndexByte(raw, 0)
	if nul < 0 {
		return nil, errors.New(errors.Corrupt, "blob %s missing header terminator", uid)
	}

	headerStr := string(raw[:nul])
	if !strings.HasPrefix(headerStr, "blob ") {
		return nil, errors.New(errors.Corrupt, "blob %s has invalid header %q", uid, headerStr)
	}

	size, err := strconv.ParseUint(headerStr[len("blob "):], 10, 64)
	if err != nil {
		return nil, errors.Wrap(errors.Corrupt, err, "blob %s has invalid size in header %q", uid, headerStr)
	}

	content := raw[nul+1:]
	if uint64(len(content)) != size {
		return nil, errors.New(errors.Corrupt, "blob %s declares size %d, has %d", uid, size, len(content))
	}

	if calc := hash.Sum(raw); calc != uid {
		return nil, errors.New(errors.Corrupt, "blob %s hash mismatch: computed %s", uid, calc)
	}

	return &Blob{raw: raw, uid: uid}, nil
}

// UID returns the blob's 40-hex identifier.
func (b *Blob) UID() string { return b.uid }

// Raw returns a defensive copy of the header+content bytes.
func (b *Blob) Raw() []byte {
	out := make([]byte, len(b.raw))
	copy(out, b.raw)
	return out
}

// Content returns a defensive copy of the content bytes, header stripped.
func (b *Blob) Content() []byte {
	nul := bytes.IndexByte(b.raw, 0)
	out := make([]byte, len(b.raw)-nul-1)
	copy(out, b.raw[nul+1:])
	return out
}

// Size returns the content byte length.
func (b *Blob) Size() int {
	nul := bytes.IndexByte(b.raw, 0)
	return len(b.raw) - nul - 1
}

// Name returns the working-tree basename this blob was built from, or the
// empty string for a blob read back from the store.
func (b *Blob) Name() string { return b.name }

// Equal reports whether two blobs have the same identity.
func (b *Blob) Equal(other *Blob) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.uid == other.uid
}
