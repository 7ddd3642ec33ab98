package minio

import (
	"context"
	"errors"
	"fmt"
	"geo-upload/internal/config"
	"geo-upload/internal/core/port"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Adapter stages upload files in a minio bucket
type Adapter struct {
	client *minio.Client
	config config.MinioConfig
	logger *slog.Logger
}

var _ port.StagingStorage = (*Adapter)(nil)

// NewAdapter returns Adapter
func NewAdapter(ctx context.Context, cfg config.MinioConfig, logger *slog.Logger) (*Adapter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Adapter{client: client, config: cfg, logger: logger}, nil
}

// Stage uploads a file under key
func (a *Adapter) Stage(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	info, err := a.client.PutObject(ctx, a.config.BucketName, key, content, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to stage object: %w", err)
	}

	a.logger.Debug("object staged",
		slog.String("fileKey", key),
		slog.Int64("size", info.Size))

	return nil
}

// DownloadURL generates a presigned URL the import service can fetch the file from
func (a *Adapter) DownloadURL(ctx context.Context, key string) (string, error) {
	presignedURL, err := a.client.PresignedGetObject(ctx, a.config.BucketName, key, a.config.DownloadSignedURLDuration, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned download URL: %w", err)
	}
	return presignedURL.String(), nil
}

// Release deletes every object under prefix
func (a *Adapter) Release(ctx context.Context, prefix string) error {
	objects := a.client.ListObjects(ctx, a.config.BucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var listErr error
	keys := make(chan minio.ObjectInfo)
	go func() {
		defer close(keys)
		for object := range objects {
			if object.Err != nil {
				listErr = object.Err
				continue
			}
			keys <- object
		}
	}()

	var errs []error
	for removeErr := range a.client.RemoveObjects(ctx, a.config.BucketName, keys, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("failed to delete %s: %w", removeErr.ObjectName, removeErr.Err))
	}
	if listErr != nil {
		errs = append(errs, fmt.Errorf("failed to list objects: %w", listErr))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	a.logger.Info("staged objects released",
		slog.String("prefix", prefix),
		slog.String("bucket", a.config.BucketName))

	return nil
}
