package render

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emersonart/printshop/internal/domain/placement"
	apperrors "github.com/emersonart/printshop/pkg/errors"
)

func TestRenderVariantsProducesAllKinds(t *testing.T) {
	backend := &stubBackend{}
	sink := &stubSink{}
	runs := &stubRuns{}
	svc, err := NewService(testConfig(), backend, sink, testWalls(), nil, runs, discardLogger())
	require.NoError(t, err)

	result, err := svc.RenderVariants(context.Background(), testArtwork(), Options{})
	require.NoError(t, err)
	require.NoError(t, result.Err())
	require.Len(t, result.Variants, 3)
	require.Equal(t, []Kind{KindGradient, KindProduct, KindTransparent},
		[]Kind{result.Variants[0].Kind, result.Variants[1].Kind, result.Variants[2].Kind})

	gradient := result.Variants[0]
	require.Equal(t, "8074394992832-a-mother-s-nature-gradient-image-2048x2048.jpeg", gradient.FileName)
	require.Equal(t, "image/jpeg", gradient.MimeType)
	require.Equal(t, "out/"+gradient.FileName, gradient.Location)
	require.Equal(t, []byte("raster:gradient"), gradient.Data)

	transparent := result.Variants[2]
	require.Equal(t, "8074394992832-a-mother-s-nature-transparent-image-2048x2048.png", transparent.FileName)
	require.Equal(t, "image/png", transparent.MimeType)
	require.Len(t, sink.saved, 3)

	require.Len(t, runs.created, 1)
	require.Len(t, runs.completed, 1)
	require.Equal(t, RunStatusSucceeded, runs.completed[0].Status)
	require.Len(t, runs.completed[0].Variants, 3)
	require.NotNil(t, runs.completed[0].FinishedAt)
}

func TestRenderVariantsDocuments(t *testing.T) {
	backend := &stubBackend{}
	svc, err := NewService(testConfig(), backend, nil, testWalls(), nil, nil, discardLogger())
	require.NoError(t, err)

	_, err = svc.RenderVariants(context.Background(), testArtwork(), Options{})
	require.NoError(t, err)

	gradient, ok := backend.doc(KindGradient)
	require.True(t, ok)
	require.Equal(t, BackgroundGradient, gradient.Background.Kind)
	require.Equal(t, placement.Geometry{MaxWidthPercent: 85, MaxHeightPercent: 85, XPercent: 50, YPercent: 50}, gradient.Geometry)
	require.Len(t, gradient.Shadow, 21)
	require.False(t, gradient.Transparent)

	product, ok := backend.doc(KindProduct)
	require.True(t, ok)
	require.Equal(t, BackgroundImage, product.Background.Kind)
	require.Equal(t, []byte("wall"), product.Background.Image)
	require.InDelta(t, 31.57, product.Geometry.MaxWidthPercent, 0.01)
	require.InDelta(t, 42.10, product.Geometry.MaxHeightPercent, 0.01)

	transparent, ok := backend.doc(KindTransparent)
	require.True(t, ok)
	require.True(t, transparent.Transparent)
	require.Equal(t, FormatPNG, transparent.Format)
	require.Equal(t, BackgroundTransparent, transparent.Background.Kind)

	// each variant owns its layers
	gradient.Shadow[0].Alpha = 99
	require.NotEqual(t, 99.0, product.Shadow[0].Alpha)
}

func TestRenderVariantsIndependentFailures(t *testing.T) {
	backend := &stubBackend{fail: map[Kind]error{KindGradient: errors.New("chrome crashed")}}
	runs := &stubRuns{}
	svc, err := NewService(testConfig(), backend, nil, testWalls(), nil, runs, discardLogger())
	require.NoError(t, err)

	result, err := svc.RenderVariants(context.Background(), testArtwork(), Options{})
	require.NoError(t, err)
	require.Len(t, result.Variants, 2)
	require.Len(t, result.Failures, 1)
	require.Equal(t, KindGradient, result.Failures[0].Kind)
	require.Equal(t, apperrors.CodeRenderError, result.Failures[0].Code())
	require.True(t, apperrors.IsCode(result.Err(), apperrors.CodeRenderError))
	require.Equal(t, RunStatusPartial, runs.completed[0].Status)
}

func TestRenderVariantsWallErrorOnlyFailsProduct(t *testing.T) {
	walls := &stubWalls{err: errors.New("open static/blank-wall.jpg: no such file")}
	svc, err := NewService(testConfig(), &stubBackend{}, nil, walls, nil, nil, discardLogger())
	require.NoError(t, err)

	result, err := svc.RenderVariants(context.Background(), testArtwork(), Options{})
	require.NoError(t, err)
	require.Len(t, result.Variants, 2)
	require.Len(t, result.Failures, 1)
	require.Equal(t, KindProduct, result.Failures[0].Kind)
	require.Equal(t, apperrors.CodeAssetError, result.Failures[0].Code())
}

func TestRenderVariantsWithoutWallConfigured(t *testing.T) {
	svc, err := NewService(DefaultConfig(), &stubBackend{}, nil, nil, nil, nil, discardLogger())
	require.NoError(t, err)

	result, err := svc.RenderVariants(context.Background(), testArtwork(), Options{})
	require.NoError(t, err)
	require.Len(t, result.Failures, 1)
	require.ErrorIs(t, result.Failures[0], ErrNoWallImage)
}

func TestRenderVariantsAllFailed(t *testing.T) {
	boom := errors.New("boom")
	backend := &stubBackend{fail: map[Kind]error{KindGradient: boom, KindProduct: boom, KindTransparent: boom}}
	runs := &stubRuns{}
	svc, err := NewService(testConfig(), backend, nil, testWalls(), nil, runs, discardLogger())
	require.NoError(t, err)

	result, err := svc.RenderVariants(context.Background(), testArtwork(), Options{})
	require.NoError(t, err)
	require.Empty(t, result.Variants)
	require.Len(t, result.Failures, 3)
	require.ErrorIs(t, result.Err(), boom)
	require.Equal(t, RunStatusFailed, runs.completed[0].Status)
}

func TestRenderVariantsPreconditionAbortsBatch(t *testing.T) {
	backend := &stubBackend{}
	runs := &stubRuns{}
	svc, err := NewService(testConfig(), backend, nil, testWalls(), nil, runs, discardLogger())
	require.NoError(t, err)

	art := testArtwork()
	art.WidthInches = 0
	_, err = svc.RenderVariants(context.Background(), art, Options{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidConfig))
	require.ErrorIs(t, err, placement.ErrInvalidArtworkSize)

	art = testArtwork()
	art.Image = nil
	_, err = svc.RenderVariants(context.Background(), art, Options{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	require.Empty(t, backend.docs)
	require.Empty(t, runs.created)
}

func TestRenderVariantsOptions(t *testing.T) {
	backend := &stubBackend{}
	svc, err := NewService(testConfig(), backend, nil, testWalls(), nil, nil, discardLogger())
	require.NoError(t, err)

	zero := 0.0
	offset := 204.8
	result, err := svc.RenderVariants(context.Background(), testArtwork(), Options{
		Intensity: &zero,
		OffsetX:   &offset,
		Kinds:     []Kind{KindTransparent, KindGradient},
	})
	require.NoError(t, err)
	require.Len(t, result.Variants, 2)
	require.Equal(t, KindGradient, result.Variants[0].Kind)
	require.Equal(t, KindTransparent, result.Variants[1].Kind)

	doc, ok := backend.doc(KindGradient)
	require.True(t, ok)
	require.InDelta(t, 60, doc.Geometry.XPercent, 1e-9)
	for _, l := range doc.Shadow {
		require.Zero(t, l.Alpha)
	}

	_, err = svc.RenderVariants(context.Background(), testArtwork(), Options{Kinds: []Kind{"sepia"}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestRenderVariantsSinkFailure(t *testing.T) {
	svc, err := NewService(testConfig(), &stubBackend{}, &stubSink{err: errors.New("disk full")}, testWalls(), nil, nil, discardLogger())
	require.NoError(t, err)

	result, err := svc.RenderVariants(context.Background(), testArtwork(), Options{})
	require.NoError(t, err)
	require.Len(t, result.Failures, 3)
	require.Equal(t, apperrors.CodeStorageError, result.Failures[0].Code())
}

func TestRenderVariantsCompression(t *testing.T) {
	cfg := testConfig()
	cfg.MaxFileBytes = 4
	compressor := &stubCompressor{out: Compressed{Data: []byte("tiny"), Quality: 70, WithinBudget: true}}
	svc, err := NewService(cfg, &stubBackend{}, nil, testWalls(), compressor, nil, discardLogger())
	require.NoError(t, err)

	result, err := svc.RenderVariants(context.Background(), testArtwork(), Options{Kinds: []Kind{KindGradient}})
	require.NoError(t, err)
	require.Equal(t, []byte("tiny"), result.Variants[0].Data)
	require.Equal(t, CompressRequest{Format: FormatJPEG, MaxBytes: 4, StartQuality: 90, Step: 10, MinQuality: 10}, compressor.req)
}

func TestRenderVariantsCompressionIsBestEffort(t *testing.T) {
	cfg := testConfig()
	cfg.MaxFileBytes = 4

	failing := &stubCompressor{err: errors.New("decode failed")}
	svc, err := NewService(cfg, &stubBackend{}, nil, testWalls(), failing, nil, discardLogger())
	require.NoError(t, err)
	result, err := svc.RenderVariants(context.Background(), testArtwork(), Options{Kinds: []Kind{KindGradient}})
	require.NoError(t, err)
	require.NoError(t, result.Err())
	require.Equal(t, []byte("raster:gradient"), result.Variants[0].Data)

	overBudget := &stubCompressor{out: Compressed{Data: []byte("smaller"), Quality: 10}}
	svc, err = NewService(cfg, &stubBackend{}, nil, testWalls(), overBudget, nil, discardLogger())
	require.NoError(t, err)
	result, err = svc.RenderVariants(context.Background(), testArtwork(), Options{Kinds: []Kind{KindGradient}})
	require.NoError(t, err)
	require.Equal(t, []byte("smaller"), result.Variants[0].Data)
}

func TestRenderVariantsCancelled(t *testing.T) {
	svc, err := NewService(testConfig(), &stubBackend{}, nil, testWalls(), nil, nil, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := svc.RenderVariants(ctx, testArtwork(), Options{})
	require.NoError(t, err)
	require.Len(t, result.Failures, 3)
	require.ErrorIs(t, result.Err(), context.Canceled)
}

func TestNewServiceValidates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quality = 0
	_, err := NewService(cfg, &stubBackend{}, nil, nil, nil, nil, discardLogger())
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidConfig))

	_, err = NewService(DefaultConfig(), nil, nil, nil, nil, nil, discardLogger())
	require.Error(t, err)
}

func TestWithSinkKeepsOriginal(t *testing.T) {
	svc, err := NewService(testConfig(), &stubBackend{}, nil, testWalls(), nil, nil, discardLogger())
	require.NoError(t, err)

	sink := &stubSink{}
	batch := svc.WithSink(sink)
	_, err = batch.RenderVariants(context.Background(), testArtwork(), Options{})
	require.NoError(t, err)
	require.Len(t, sink.saved, 3)

	result, err := svc.RenderVariants(context.Background(), testArtwork(), Options{})
	require.NoError(t, err)
	require.Empty(t, result.Variants[0].Location)
}

func TestListRuns(t *testing.T) {
	runs := &stubRuns{}
	svc, err := NewService(testConfig(), &stubBackend{}, nil, testWalls(), nil, runs, discardLogger())
	require.NoError(t, err)
	_, err = svc.RenderVariants(context.Background(), testArtwork(), Options{})
	require.NoError(t, err)

	listed, err := svc.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "8074394992832", listed[0].ProductID)

	bare, err := NewService(testConfig(), &stubBackend{}, nil, nil, nil, nil, discardLogger())
	require.NoError(t, err)
	listed, err = bare.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, listed)
}
