package render

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubBackend struct {
	mu   sync.Mutex
	docs []Document
	fail map[Kind]error
}

func (b *stubBackend) Render(_ context.Context, doc Document) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs = append(b.docs, doc)
	if err := b.fail[doc.Kind]; err != nil {
		return nil, err
	}
	return []byte("raster:" + string(doc.Kind)), nil
}

func (b *stubBackend) doc(kind Kind) (Document, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.docs {
		if d.Kind == kind {
			return d, true
		}
	}
	return Document{}, false
}

type stubWalls struct {
	asset WallAsset
	err   error
	paths []string
	mu    sync.Mutex
}

func (w *stubWalls) LoadWall(_ context.Context, path string) (WallAsset, error) {
	w.mu.Lock()
	w.paths = append(w.paths, path)
	w.mu.Unlock()
	return w.asset, w.err
}

type stubSink struct {
	mu    sync.Mutex
	saved []Variant
	err   error
}

func (s *stubSink) Save(_ context.Context, v Variant) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, v)
	return "out/" + v.FileName, nil
}

type stubCompressor struct {
	out Compressed
	err error
	req CompressRequest
}

func (c *stubCompressor) Compress(_ context.Context, _ []byte, req CompressRequest) (Compressed, error) {
	c.req = req
	return c.out, c.err
}

type stubRuns struct {
	created   []Run
	completed []Run
	err       error
}

func (r *stubRuns) Create(_ context.Context, run Run) error {
	r.created = append(r.created, run)
	return r.err
}

func (r *stubRuns) Complete(_ context.Context, run Run) error {
	r.completed = append(r.completed, run)
	return r.err
}

func (r *stubRuns) Get(context.Context, uuid.UUID) (Run, bool, error) {
	return Run{}, false, errors.New("not implemented")
}

func (r *stubRuns) List(_ context.Context, limit int) ([]Run, error) {
	if len(r.completed) > limit {
		return r.completed[:limit], nil
	}
	return r.completed, nil
}

func testArtwork() Artwork {
	return Artwork{
		ID:           "8074394992832",
		Title:        "A Mother's Nature",
		Image:        []byte("jpeg-bytes"),
		MimeType:     "image/jpeg",
		WidthInches:  36,
		HeightInches: 48,
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.WallImagePath = "static/blank-wall.jpg"
	return cfg
}

func testWalls() *stubWalls {
	return &stubWalls{asset: WallAsset{Data: []byte("wall"), MimeType: "image/jpeg", Width: 2048, Height: 2048}}
}
