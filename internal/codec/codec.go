// Package codec implements the lossless compression pair object payloads
// are stored under: a raw deflate/inflate stream, no zlib/gzip framing, no
// checksum beyond what the codec carries internally.
package codec

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/gitlethub/core/internal/errors"
)

// Compress deflates data. The returned bytes have no wrapper framing.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, errors.Wrap(errors.Format, err, "creating deflate writer")
	}
	if _, err := w.Write(data); err != nil {
		return nil, errors.Wrap(errors.Format, err, "deflating %d bytes", len(data))
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(errors.Format, err, "finalizing deflate stream")
	}
	return buf.Bytes(), nil
}

// Decompress inflates data produced by Compress. Malformed input fails
// with an errors.Format error.
func Decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.Format, err, "inflating %d bytes", len(data))
	}
	return out, nil
}
