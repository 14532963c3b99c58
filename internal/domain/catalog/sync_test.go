package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/emersonart/printshop/pkg/errors"
)

func newTestJob(cfg SyncConfig, cat *stubCatalog, fetcher *stubFetcher, renderer *stubRenderer, sleeps *[]time.Duration) *SyncJob {
	job := NewSyncJob(cfg, cat, fetcher, renderer, discardLogger())
	job.sleep = noSleep(sleeps)
	return job
}

func TestSyncJobRendersAndUploads(t *testing.T) {
	unsized := Product{ID: "3", Title: "Unsized", ImageURL: "https://cdn.example.com/3.jpg"}
	cat := &stubCatalog{products: []Product{
		sizedProduct("1", 1, 36, 48),
		sizedProduct("2", 4, 20, 20),
		unsized,
		sizedProduct("4", 0, 30, 31),
	}}
	fetcher := &stubFetcher{}
	renderer := &stubRenderer{}
	var sleeps []time.Duration

	report, err := newTestJob(DefaultSyncConfig(), cat, fetcher, renderer, &sleeps).Run(context.Background(), SyncFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, report.Processed)
	require.Equal(t, 2, report.Uploaded)
	require.Equal(t, 2, report.Skipped)
	require.Zero(t, report.Failed)
	require.Len(t, report.Items, 4)
	require.Equal(t, SyncSkipped, report.Items[1].Status)
	require.Equal(t, SyncSkipped, report.Items[2].Status)

	require.Len(t, renderer.artworks, 2)
	require.Equal(t, 36.0, renderer.artworks[0].WidthInches)
	require.Equal(t, 48.0, renderer.artworks[0].HeightInches)
	require.Equal(t, []byte("image:https://cdn.example.com/1.jpg"), renderer.artworks[0].Image)

	require.Len(t, cat.uploads["1"], 3)
	require.Equal(t, "1-print-1-gradient-image-2048x2048.jpeg", cat.uploads["1"][0].FileName)
	require.Equal(t, []string{"https://cdn.example.com/1.jpg", "https://cdn.example.com/4.jpg"}, fetcher.urls)

	require.Len(t, sleeps, 3)
	require.Equal(t, 500*time.Millisecond, sleeps[0])
}

func TestSyncJobWithoutUpload(t *testing.T) {
	cat := &stubCatalog{products: []Product{sizedProduct("1", 0, 10, 10)}}
	cfg := DefaultSyncConfig()
	cfg.Upload = false
	var sleeps []time.Duration

	report, err := newTestJob(cfg, cat, &stubFetcher{}, &stubRenderer{}, &sleeps).Run(context.Background(), SyncFilter{})
	require.NoError(t, err)
	require.Equal(t, SyncRendered, report.Items[0].Status)
	require.Len(t, report.Items[0].Files, 3)
	require.Empty(t, cat.uploads)
	require.Empty(t, sleeps)
}

func TestSyncJobFailuresAreReported(t *testing.T) {
	var sleeps []time.Duration

	cat := &stubCatalog{products: []Product{sizedProduct("1", 0, 10, 10)}}
	report, err := newTestJob(DefaultSyncConfig(), cat, &stubFetcher{err: errors.New("404")}, &stubRenderer{}, &sleeps).Run(context.Background(), SyncFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, report.Failed)
	require.Contains(t, report.Items[0].Reason, "fetch image")

	report, err = newTestJob(DefaultSyncConfig(), cat, &stubFetcher{}, &stubRenderer{failAll: true}, &sleeps).Run(context.Background(), SyncFilter{})
	require.NoError(t, err)
	require.Equal(t, SyncFailed, report.Items[0].Status)

	uploadFails := &stubCatalog{products: cat.products, uploadErr: errors.New("rate limited")}
	report, err = newTestJob(DefaultSyncConfig(), uploadFails, &stubFetcher{}, &stubRenderer{}, &sleeps).Run(context.Background(), SyncFilter{})
	require.NoError(t, err)
	require.Equal(t, SyncFailed, report.Items[0].Status)
	require.Contains(t, report.Items[0].Reason, "rate limited")
}

func TestSyncJobSelectedProducts(t *testing.T) {
	cat := &stubCatalog{products: []Product{sizedProduct("1", 0, 10, 10), sizedProduct("2", 0, 10, 10)}}
	renderer := &stubRenderer{}
	var sleeps []time.Duration

	report, err := newTestJob(DefaultSyncConfig(), cat, &stubFetcher{}, renderer, &sleeps).Run(context.Background(), SyncFilter{ProductIDs: []string{"2", "missing"}})
	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	require.Equal(t, "2", renderer.artworks[0].ID)
}

func TestSyncJobListFailure(t *testing.T) {
	var sleeps []time.Duration
	_, err := newTestJob(DefaultSyncConfig(), &stubCatalog{listErr: errors.New("down")}, &stubFetcher{}, &stubRenderer{}, &sleeps).Run(context.Background(), SyncFilter{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeCatalogError))
}

func TestSyncJobStopsOnCancel(t *testing.T) {
	cat := &stubCatalog{products: []Product{sizedProduct("1", 0, 10, 10), sizedProduct("2", 0, 10, 10)}}
	ctx, cancel := context.WithCancel(context.Background())
	job := NewSyncJob(DefaultSyncConfig(), cat, &stubFetcher{}, &stubRenderer{}, discardLogger())
	job.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	report, err := job.Run(ctx, SyncFilter{})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, report.Items, 1)
}
