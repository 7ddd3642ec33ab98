package port

import (
	"context"
	"io"
)

// StagingStorage holds the files of an upload until the import is finalized
type StagingStorage interface {
	Stage(ctx context.Context, key string, content io.Reader, size int64, contentType string) error
	DownloadURL(ctx context.Context, key string) (string, error)
	Release(ctx context.Context, prefix string) error
}

// SpaceProbe reports the free space of a local directory
type SpaceProbe interface {
	FreeBytes(path string) (uint64, error)
}
