package sink

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/emersonart/printshop/internal/domain/render"
)

// ObjectOptions configures an S3 compatible bucket (S3, R2, MinIO).
type ObjectOptions struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	Prefix        string
	PublicBaseURL string
}

// ObjectSink uploads variants to object storage.
type ObjectSink struct {
	client *minio.Client
	opts   ObjectOptions
	logger *slog.Logger

	bucketOnce sync.Once
	bucketErr  error
}

// NewObjectSink constructs the sink.
func NewObjectSink(opts ObjectOptions, logger *slog.Logger) (*ObjectSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	useSSL := strings.HasPrefix(strings.ToLower(opts.Endpoint), "https")
	client, err := minio.New(sanitizeEndpoint(opts.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure:       useSSL,
		Region:       opts.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return &ObjectSink{client: client, opts: opts, logger: logger.With("component", "sink.object")}, nil
}

func (s *ObjectSink) ensureBucket(ctx context.Context) error {
	s.bucketOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.opts.Bucket)
		if err == nil && exists {
			return
		}
		err = s.client.MakeBucket(ctx, s.opts.Bucket, minio.MakeBucketOptions{Region: s.opts.Region})
		if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
			s.bucketErr = err
		}
	})
	return s.bucketErr
}

// Save uploads the variant and returns its public URL, or the object key
// when no public base URL is configured.
func (s *ObjectSink) Save(ctx context.Context, variant render.Variant) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}
	key := objectKey(s.opts.Prefix, variant.FileName)
	_, err := s.client.PutObject(ctx, s.opts.Bucket, key, bytes.NewReader(variant.Data), int64(len(variant.Data)), minio.PutObjectOptions{
		ContentType:      variant.MimeType,
		DisableMultipart: len(variant.Data) < 5*1024*1024,
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	s.logger.Info("variant uploaded", "bucket", s.opts.Bucket, "key", key)
	return publicURL(s.opts.PublicBaseURL, key), nil
}

func objectKey(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

func publicURL(base, key string) string {
	if base == "" {
		return key
	}
	return strings.TrimRight(base, "/") + "/" + key
}

// sanitizeEndpoint strips scheme and path, which minio rejects.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if host, _, ok := strings.Cut(raw, "/"); ok {
		return host
	}
	return raw
}

var _ render.Sink = (*ObjectSink)(nil)
