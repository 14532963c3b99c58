package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataURIRoundTrip(t *testing.T) {
	uri := EncodeDataURI("image/png", []byte{0x89, 'P', 'N', 'G'})
	require.Equal(t, "data:image/png;base64,iVBORw==", uri)
	require.True(t, IsDataURI(uri))

	data, mime, err := DecodeDataURI(uri)
	require.NoError(t, err)
	require.Equal(t, "image/png", mime)
	require.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
}

func TestDecodeDataURIRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "https://example.com/a.png", "data:image/png,raw", "data:image/png;base64", "data:image/png;base64,***"} {
		_, _, err := DecodeDataURI(raw)
		require.ErrorIs(t, err, ErrMalformedDataURI, raw)
	}
}
