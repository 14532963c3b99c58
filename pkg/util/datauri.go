package util

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrMalformedDataURI = errors.New("malformed data uri")

// EncodeDataURI renders data as a base64 data URI.
func EncodeDataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(mimeType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(mimeType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// IsDataURI reports whether raw looks like a data URI.
func IsDataURI(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), "data:")
}

// DecodeDataURI returns the payload and declared mime type. Only base64 payloads are accepted.
func DecodeDataURI(raw string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), "data:")
	if !ok {
		return nil, "", ErrMalformedDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrMalformedDataURI
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, "", ErrMalformedDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", errors.Join(ErrMalformedDataURI, err)
	}
	return data, mimeType, nil
}
