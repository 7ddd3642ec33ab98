package port

import (
	"context"
	"geo-upload/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// UploadRepository is an interface to interact with the upload ledger
type UploadRepository interface {
	Upsert(ctx context.Context, upload domain.Upload) error
	FindByImportID(ctx context.Context, importID string) (*domain.Upload, error)
	FindResumableByUser(ctx context.Context, userID string) ([]domain.Upload, error)
	FindStale(ctx context.Context, before time.Time) ([]domain.Upload, error)
	UpdateState(ctx context.Context, id uuid.UUID, state domain.UploadState) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UploadFileRepository is an interface to interact with the staged files of an upload
type UploadFileRepository interface {
	CreateMany(ctx context.Context, files []domain.UploadFile) (int, error)
	FindByUploadID(ctx context.Context, uploadID uuid.UUID) ([]domain.UploadFile, error)
	DeleteByUploadID(ctx context.Context, uploadID uuid.UUID) error
}

// UploadService is the upload workflow orchestrator
type UploadService interface {
	HandleStep(ctx context.Context, req domain.StepRequest) domain.StepResponse
	Progress(ctx context.Context, sessionToken string) (*domain.Progress, error)
	DeleteUpload(ctx context.Context, sessionToken string, userID string, importID string) error
}
