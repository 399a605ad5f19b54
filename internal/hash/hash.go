// Package hash computes the fixed-width SHA-1 identifiers the rest of the
// core keys objects by.
package hash

import (
	"crypto/sha1"
	"encoding/hex"
)

// Sum returns the 40-character lowercase hex SHA-1 of the concatenation of
// parts, in order, with no separator inserted between them. A call with no
// parts returns the SHA-1 of the empty byte sequence.
//
// Callers encode text inputs to UTF-8 themselves ([]byte("blob ")) rather
// than passing heterogeneous values here — the hashing surface is a plain
// sequence of byte-slice views.
func Sum(parts ...[]byte) string {
	h := sha1.New()
	for _, p := range parts {
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
