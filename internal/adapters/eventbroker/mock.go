package eventbroker

import (
	"context"
	"geo-upload/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type MockImportRunPublisher struct {
	mock.Mock
}

func NewMockImportRunPublisher() *MockImportRunPublisher {
	return &MockImportRunPublisher{}
}

func (m *MockImportRunPublisher) PublishImportRun(ctx context.Context, req domain.ImportRunRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
