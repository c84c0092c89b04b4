package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func NewClient(endpoint, key, secret string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(key, secret, ""),
		Secure: useSSL,
	})
}

const publicReadPolicy = `{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": {"AWS": ["*"]},
    "Action": ["s3:GetObject"],
    "Resource": ["arn:aws:s3:::%s/*"]
  }]
}`

// Storage implements ports.ObjectStorage on top of a MinIO bucket.
type Storage struct {
	client    *minio.Client
	publicURL string
}

// NewStorage wraps client. publicURL is the externally reachable base used in
// returned object URLs; the client endpoint is used when it is empty.
func NewStorage(client *minio.Client, publicURL string) *Storage {
	base := strings.TrimRight(strings.TrimSpace(publicURL), "/")
	if base == "" && client != nil {
		base = strings.TrimRight(client.EndpointURL().String(), "/")
	}
	return &Storage{client: client, publicURL: base}
}

// EnsureBucket creates bucket when missing and makes its objects publicly readable.
func (s *Storage) EnsureBucket(ctx context.Context, bucket, region string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("minio: check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return fmt.Errorf("minio: create bucket %s: %w", bucket, err)
		}
	}
	if err := s.client.SetBucketPolicy(ctx, bucket, fmt.Sprintf(publicReadPolicy, bucket)); err != nil {
		return fmt.Errorf("minio: set policy on %s: %w", bucket, err)
	}
	return nil
}

func (s *Storage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=86400",
	})
	if err != nil {
		return "", fmt.Errorf("minio: put %s/%s: %w", bucket, objectName, err)
	}
	return ObjectURL(s.publicURL, bucket, objectName), nil
}

func (s *Storage) Remove(ctx context.Context, bucket, objectName string) error {
	if err := s.client.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio: remove %s/%s: %w", bucket, objectName, err)
	}
	return nil
}

// ObjectURL joins base, bucket and objectName, escaping each path segment.
func ObjectURL(base, bucket, objectName string) string {
	segments := strings.Split(strings.Trim(objectName, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}

// ObjectNameFromURL reverses ObjectURL for URLs under base and bucket.
func ObjectNameFromURL(base, bucket, rawURL string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/" + url.PathEscape(bucket) + "/"
	if base == "" || !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	name, err := url.PathUnescape(strings.TrimPrefix(rawURL, prefix))
	if err != nil || name == "" {
		return "", false
	}
	return name, true
}
