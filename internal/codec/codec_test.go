package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitlethub/core/internal/errors"
)

func TestRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		[]byte("hello world"),
		make([]byte, 10000), // repetitive, compresses well
	}
	for _, c := range cases {
		compressed, err := Compress(c)
		require.NoError(t, err)

		out, err := Decompress(compressed)
		require.NoError(t, err)
		// nil and an empty slice compress to the same stream, so the
		// round trip is checked as a byte sequence, not by nil-ness.
		assert.True(t, bytes.Equal(c, out), "round trip of %d bytes", len(c))
	}
}

func TestDecompressMalformedIsFormatError(t *testing.T) {
	_, err := Decompress([]byte{0xff, 0xff, 0xff, 0xff})
	require.Error(t, err)
	assert.Equal(t, errors.Format, errors.KindOf(err))
}
