package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/njprem/lighthouse-api/internal/media"
	"github.com/njprem/lighthouse-api/internal/repository/ports"
)

const (
	defaultAvatarBucket   = "lighthouse-avatars"
	defaultAvatarMaxBytes = int64(2 * 1024 * 1024)
	avatarObjectPrefix    = "avatars/"
)

// ImageUpload is an image received from a client.
type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type AvatarConfig struct {
	Bucket    string
	MaxBytes  int64
	Dimension int
	// Processor is optional; images are stored as received when nil.
	Processor media.Processor
}

type avatarUploader struct {
	storage   ports.ObjectStorage
	bucket    string
	maxBytes  int64
	dimension int
	processor media.Processor
	logger    *slog.Logger
}

func newAvatarUploader(storage ports.ObjectStorage, cfg AvatarConfig, logger *slog.Logger) *avatarUploader {
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		bucket = defaultAvatarBucket
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultAvatarMaxBytes
	}
	dimension := cfg.Dimension
	if dimension <= 0 {
		dimension = media.DefaultAvatarDimension
	}
	return &avatarUploader{
		storage:   storage,
		bucket:    bucket,
		maxBytes:  maxBytes,
		dimension: dimension,
		processor: cfg.Processor,
		logger:    logger,
	}
}

// precheck returns the problem with img's declared content type or size, or
// an empty string.
func (u *avatarUploader) precheck(img ImageUpload) string {
	if img.Reader == nil {
		return "is required"
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(img.ContentType)), "image/") {
		return "must be an image"
	}
	if img.Size > u.maxBytes {
		return fmt.Sprintf("must be at most %d bytes", u.maxBytes)
	}
	return ""
}

// upload validates img and stores it. field names the input in validation errors.
// It returns the public URL and the object name.
func (u *avatarUploader) upload(ctx context.Context, field string, img ImageUpload) (string, string, error) {
	if msg := u.precheck(img); msg != "" {
		return "", "", fieldError(field, msg)
	}
	data, err := io.ReadAll(io.LimitReader(img.Reader, u.maxBytes+1))
	if err != nil {
		return "", "", fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > u.maxBytes {
		return "", "", fieldError(field, fmt.Sprintf("must be at most %d bytes", u.maxBytes))
	}
	info, err := media.Inspect(data)
	if err != nil {
		return "", "", fieldError(field, "must be a png, jpeg, gif or webp image")
	}
	if u.storage == nil {
		return "", "", fmt.Errorf("%w: image storage is not configured", ErrUpstream)
	}

	contentType := info.ContentType
	if u.processor != nil {
		result, err := u.processor.Process(ctx, media.Upload{
			Reader:      bytes.NewReader(data),
			Size:        int64(len(data)),
			FileName:    img.FileName,
			ContentType: info.ContentType,
		}, u.dimension)
		if err != nil {
			return "", "", fmt.Errorf("%w: process image: %v", ErrUpstream, err)
		}
		data = result.Bytes
		contentType = result.ContentType
	}

	objectName := avatarObjectPrefix + uuid.NewString() + media.Extension(contentType)
	url, err := u.storage.Upload(ctx, u.bucket, objectName, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return url, objectName, nil
}

// discard removes an object that ended up unreferenced. Failures are only logged.
func (u *avatarUploader) discard(ctx context.Context, objectName string) {
	if objectName == "" || u.storage == nil {
		return
	}
	if err := u.storage.Remove(context.WithoutCancel(ctx), u.bucket, objectName); err != nil {
		u.logger.WarnContext(ctx, "remove orphaned avatar", slog.String("object", objectName), slog.Any("error", err))
	}
}
