package session

import (
	"context"
	"geo-upload/internal/core/domain"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockSessionStore struct {
	mock.Mock
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{}
}

func (m *MockSessionStore) Get(ctx context.Context, token string) (*domain.UploadSession, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(*domain.UploadSession), args.Error(1)
}

func (m *MockSessionStore) Save(ctx context.Context, token string, session domain.UploadSession) error {
	args := m.Called(ctx, token, session)
	return args.Error(0)
}

func (m *MockSessionStore) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockSessionStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}
