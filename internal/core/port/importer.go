package port

import (
	"context"
	"geo-upload/internal/core/domain"
)

// ImportService is the narrow contract of the external import engine
type ImportService interface {
	StartJob(ctx context.Context, user string, layerName string, stagedFilePath string, overwrite bool) (domain.JobHandle, error)
	JobState(ctx context.Context, job domain.JobHandle) (domain.JobStatus, error)
	Describe(ctx context.Context, job domain.JobHandle) (*domain.ImportItem, error)
	ApplySRS(ctx context.Context, job domain.JobHandle, srsCode string) error
	ApplyGeometryFromColumns(ctx context.Context, job domain.JobHandle, latField string, lngField string) error
	ApplyTimeConfig(ctx context.Context, job domain.JobHandle, cfg domain.TimeConfig) error
	RunToCompletion(ctx context.Context, job domain.JobHandle) error
	Progress(ctx context.Context, job domain.JobHandle) (domain.Progress, error)
	Finalize(ctx context.Context, job domain.JobHandle, user string, metadata domain.LayerMetadata) (*domain.LayerRef, error)
}
