package importer

import (
	"context"
	"geo-upload/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type MockImportService struct {
	mock.Mock
}

func NewMockImportService() *MockImportService {
	return &MockImportService{}
}

func (m *MockImportService) StartJob(ctx context.Context, user string, layerName string, stagedFilePath string, overwrite bool) (domain.JobHandle, error) {
	args := m.Called(ctx, user, layerName, stagedFilePath, overwrite)
	return args.Get(0).(domain.JobHandle), args.Error(1)
}

func (m *MockImportService) JobState(ctx context.Context, job domain.JobHandle) (domain.JobStatus, error) {
	args := m.Called(ctx, job)
	return args.Get(0).(domain.JobStatus), args.Error(1)
}

func (m *MockImportService) Describe(ctx context.Context, job domain.JobHandle) (*domain.ImportItem, error) {
	args := m.Called(ctx, job)
	return args.Get(0).(*domain.ImportItem), args.Error(1)
}

func (m *MockImportService) ApplySRS(ctx context.Context, job domain.JobHandle, srsCode string) error {
	args := m.Called(ctx, job, srsCode)
	return args.Error(0)
}

func (m *MockImportService) ApplyGeometryFromColumns(ctx context.Context, job domain.JobHandle, latField string, lngField string) error {
	args := m.Called(ctx, job, latField, lngField)
	return args.Error(0)
}

func (m *MockImportService) ApplyTimeConfig(ctx context.Context, job domain.JobHandle, cfg domain.TimeConfig) error {
	args := m.Called(ctx, job, cfg)
	return args.Error(0)
}

func (m *MockImportService) RunToCompletion(ctx context.Context, job domain.JobHandle) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockImportService) Progress(ctx context.Context, job domain.JobHandle) (domain.Progress, error) {
	args := m.Called(ctx, job)
	return args.Get(0).(domain.Progress), args.Error(1)
}

func (m *MockImportService) Finalize(ctx context.Context, job domain.JobHandle, user string, metadata domain.LayerMetadata) (*domain.LayerRef, error) {
	args := m.Called(ctx, job, user, metadata)
	return args.Get(0).(*domain.LayerRef), args.Error(1)
}
