package imagecodec

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emersonart/printshop/internal/domain/render"
	"github.com/emersonart/printshop/pkg/util"
)

func noisyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProbe(t *testing.T) {
	w, h, mime, err := Probe(noisyPNG(t, 12, 7))
	require.NoError(t, err)
	require.Equal(t, 12, w)
	require.Equal(t, 7, h)
	require.Equal(t, "image/png", mime)

	_, _, _, err = Probe([]byte("not an image"))
	require.Error(t, err)
}

func TestFileWallLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wall.png")
	require.NoError(t, os.WriteFile(path, noisyPNG(t, 20, 10), 0o600))

	wall, err := NewFileWallLoader().LoadWall(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 20, wall.Width)
	require.Equal(t, 10, wall.Height)
	require.Equal(t, "image/png", wall.MimeType)

	_, err = NewFileWallLoader().LoadWall(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"))
	require.Error(t, err)
}

func TestCompressorReachesBudget(t *testing.T) {
	src := noisyPNG(t, 64, 64)
	img, _, err := Decode(src)
	require.NoError(t, err)
	full, err := Encode(img, render.FormatJPEG, 100)
	require.NoError(t, err)

	out, err := NewCompressor(0, nil).Compress(context.Background(), full, render.CompressRequest{
		Format:       render.FormatJPEG,
		MaxBytes:     int64(len(full)) - 1,
		StartQuality: 90,
		Step:         10,
		MinQuality:   10,
	})
	require.NoError(t, err)
	require.True(t, out.WithinBudget)
	require.Less(t, len(out.Data), len(full))
	require.Equal(t, 90, out.Quality)
	require.Equal(t, 1, out.Attempts)
}

func TestCompressorStopsAtFloor(t *testing.T) {
	src := noisyPNG(t, 64, 64)
	img, _, err := Decode(src)
	require.NoError(t, err)
	full, err := Encode(img, render.FormatJPEG, 100)
	require.NoError(t, err)

	out, err := NewCompressor(0, nil).Compress(context.Background(), full, render.CompressRequest{
		Format:       render.FormatJPEG,
		MaxBytes:     1,
		StartQuality: 90,
		Step:         10,
		MinQuality:   10,
	})
	require.NoError(t, err)
	require.False(t, out.WithinBudget)
	require.Equal(t, 9, out.Attempts)
	require.NotEmpty(t, out.Data)
	require.Less(t, len(out.Data), len(full))
}

func TestCompressorRejectsGarbage(t *testing.T) {
	_, err := NewCompressor(0, nil).Compress(context.Background(), []byte("nope"), render.CompressRequest{Format: render.FormatJPEG, MaxBytes: 1})
	require.Error(t, err)
}

func TestPixelLimit(t *testing.T) {
	data := noisyPNG(t, 10, 10)
	require.NoError(t, CheckPixels(data, 100))
	require.ErrorIs(t, CheckPixels(data, 99), ErrImageTooLarge)
	require.NoError(t, CheckPixels([]byte("not an image"), 1))

	_, _, err := DecodeLimited(data, 50)
	require.ErrorIs(t, err, ErrImageTooLarge)
	img, format, err := DecodeLimited(data, 0)
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, 10, img.Bounds().Dx())

	_, err = NewCompressor(50, nil).Compress(context.Background(), data, render.CompressRequest{Format: render.FormatPNG, MaxBytes: 1 << 20})
	require.ErrorIs(t, err, ErrImageTooLarge)
}

func TestFlattenIsOpaque(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(1, 0, color.NRGBA{A: 0xff})
	flat := Flatten(img)
	require.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, flat.NRGBAAt(0, 0))
	require.Equal(t, color.NRGBA{A: 0xff}, flat.NRGBAAt(1, 0))
}

func TestHTTPFetcher(t *testing.T) {
	payload := noisyPNG(t, 4, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png; charset=binary")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(time.Second)
	data, mime, err := fetcher.Fetch(context.Background(), srv.URL+"/art.png")
	require.NoError(t, err)
	require.Equal(t, payload, data)
	require.Equal(t, "image/png", mime)

	_, _, err = fetcher.Fetch(context.Background(), srv.URL+"/missing.png")
	require.ErrorContains(t, err, "404")

	data, mime, err = fetcher.Fetch(context.Background(), util.EncodeDataURI("image/png", payload))
	require.NoError(t, err)
	require.Equal(t, payload, data)
	require.Equal(t, "image/png", mime)
}
