// Package objectstore archives exported reports in an S3-compatible bucket.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"venuedesk/pkg/logger"
)

// XLSXContentType is the media type of excelize workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Archiver stores a rendered report and returns its object key.
type Archiver interface {
	Archive(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Config holds bucket connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether an endpoint and bucket are configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != "" && strings.TrimSpace(c.Bucket) != ""
}

// Client wraps a MinIO/S3 client.
type Client struct {
	bucket         string
	client         *minio.Client
	bucketInitOnce sync.Once
	bucketInitErr  error
}

// NewClient configures an archiver for cfg. The bucket is created on first use.
func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("objectstore: endpoint is required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("objectstore: bucket is required")
	}

	mc, err := minio.New(parseEndpoint(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: create client: %w", err)
	}
	return &Client{bucket: bucket, client: mc}, nil
}

// Archive uploads data under key.
func (c *Client) Archive(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("objectstore: object key is required")
	}
	if err := c.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("objectstore: put object: %w", err)
	}

	logger.Info(ctx, "report archived", "bucket", c.bucket, "key", key, "size", info.Size)
	return key, nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	c.bucketInitOnce.Do(func() {
		exists, err := c.client.BucketExists(ctx, c.bucket)
		if err != nil {
			c.bucketInitErr = fmt.Errorf("objectstore: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			c.bucketInitErr = fmt.Errorf("objectstore: create bucket: %w", err)
		}
	})
	return c.bucketInitErr
}

// Noop discards reports when no bucket is configured.
type Noop struct{}

// Archive implements Archiver.
func (Noop) Archive(_ context.Context, key string, _ []byte, _ string) (string, error) {
	return key, nil
}

// New returns a Client when cfg is enabled and Noop otherwise.
func New(cfg Config) (Archiver, error) {
	if !cfg.Enabled() {
		return Noop{}, nil
	}
	return NewClient(cfg)
}

// ReportKey names an archived report: reports/<kind>/<yyyy>/<mm>/<kind>_<label>_<stamp>.xlsx.
// label identifies the reported period, at the archive time.
func ReportKey(kind, label string, at time.Time) string {
	at = at.UTC()
	name := fmt.Sprintf("%s_%s_%s.xlsx", kind, label, at.Format("20060102T150405"))
	return path.Join("reports", kind, at.Format("2006"), at.Format("01"), name)
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var (
	_ Archiver = (*Client)(nil)
	_ Archiver = Noop{}
)
