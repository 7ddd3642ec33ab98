package upload

import (
	"context"
	"geo-upload/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

// MockUploadService is a mock implementation of UploadService
type MockUploadService struct {
	mock.Mock
}

// NewMockUploadService creates a new MockUploadService
func NewMockUploadService() *MockUploadService {
	return &MockUploadService{}
}

func (m *MockUploadService) HandleStep(ctx context.Context, req domain.StepRequest) domain.StepResponse {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.StepResponse)
}

func (m *MockUploadService) Progress(ctx context.Context, sessionToken string) (*domain.Progress, error) {
	args := m.Called(ctx, sessionToken)
	return args.Get(0).(*domain.Progress), args.Error(1)
}

func (m *MockUploadService) DeleteUpload(ctx context.Context, sessionToken string, userID string, importID string) error {
	args := m.Called(ctx, sessionToken, userID, importID)
	return args.Error(0)
}
