package repository

import (
	"context"
	"geo-upload/internal/core/domain"
	"geo-upload/internal/core/port"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUploadRepository struct {
	mock.Mock
}

func NewMockUploadRepository() *MockUploadRepository {
	return &MockUploadRepository{}
}

func (m *MockUploadRepository) Upsert(ctx context.Context, upload domain.Upload) error {
	args := m.Called(ctx, upload)
	return args.Error(0)
}

func (m *MockUploadRepository) FindByImportID(ctx context.Context, importID string) (*domain.Upload, error) {
	args := m.Called(ctx, importID)
	return args.Get(0).(*domain.Upload), args.Error(1)
}

func (m *MockUploadRepository) FindResumableByUser(ctx context.Context, userID string) ([]domain.Upload, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Upload), args.Error(1)
}

func (m *MockUploadRepository) FindStale(ctx context.Context, before time.Time) ([]domain.Upload, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]domain.Upload), args.Error(1)
}

func (m *MockUploadRepository) UpdateState(ctx context.Context, id uuid.UUID, state domain.UploadState) error {
	args := m.Called(ctx, id, state)
	return args.Error(0)
}

func (m *MockUploadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockUploadFileRepository struct {
	mock.Mock
}

func NewMockUploadFileRepository() *MockUploadFileRepository {
	return &MockUploadFileRepository{}
}

func (m *MockUploadFileRepository) CreateMany(ctx context.Context, files []domain.UploadFile) (int, error) {
	args := m.Called(ctx, files)
	return args.Int(0), args.Error(1)
}

func (m *MockUploadFileRepository) FindByUploadID(ctx context.Context, uploadID uuid.UUID) ([]domain.UploadFile, error) {
	args := m.Called(ctx, uploadID)
	return args.Get(0).([]domain.UploadFile), args.Error(1)
}

func (m *MockUploadFileRepository) DeleteByUploadID(ctx context.Context, uploadID uuid.UUID) error {
	args := m.Called(ctx, uploadID)
	return args.Error(0)
}

type MockUnitOfWork struct {
	mock.Mock
	uploadRepo     *MockUploadRepository
	uploadFileRepo *MockUploadFileRepository
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		uploadRepo:     &MockUploadRepository{},
		uploadFileRepo: &MockUploadFileRepository{},
	}
}

func (m *MockUnitOfWork) UploadRepo() port.UploadRepository {
	return m.uploadRepo
}

func (m *MockUnitOfWork) UploadFileRepo() port.UploadFileRepository {
	return m.uploadFileRepo
}

func (m *MockUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	args := m.Called(ctx, fn)

	if err := fn(m); err != nil {
		return err
	}

	return args.Error(0)
}

func (m *MockUnitOfWork) GetUploadRepoMock() *MockUploadRepository {
	return m.uploadRepo
}

func (m *MockUnitOfWork) GetUploadFileRepoMock() *MockUploadFileRepository {
	return m.uploadFileRepo
}
