// Package publish uploads rendered figures to an S3-compatible bucket.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrNotConfigured is returned by New when endpoint or bucket is missing.
var ErrNotConfigured = errors.New("publish: endpoint and bucket are required")

// Config locates the bucket.
type Config struct {
	Endpoint  string // host[:port], no scheme
	Bucket    string
	Prefix    string // key prefix inside the bucket
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Enabled reports whether c names a bucket.
func (c Config) Enabled() bool { return c.Endpoint != "" && c.Bucket != "" }

// Client uploads figures into one bucket.
type Client struct {
	mc     *minio.Client
	bucket string
	prefix string
}

// New creates a client. No request is made until the first upload.
func New(cfg Config) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("publish: create client: %w", err)
	}
	return &Client{mc: mc, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Key returns the object key for a local file name.
func (c *Client) Key(name string) string {
	return path.Join(c.prefix, path.Base(name))
}

// Upload stores data under Key(name) and returns "s3://bucket/key".
func (c *Client) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := c.Key(name)
	_, err := c.mc.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to bucket %s: %w", key, c.bucket, err)
	}
	return "s3://" + c.bucket + "/" + key, nil
}
