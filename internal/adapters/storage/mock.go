package storage

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

func (m *MockStorage) Stage(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	// drain the reader so checksums are computed like a real upload
	if content != nil {
		_, _ = io.Copy(io.Discard, content)
	}
	args := m.Called(ctx, key, size, contentType)
	return args.Error(0)
}

func (m *MockStorage) DownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Release(ctx context.Context, prefix string) error {
	args := m.Called(ctx, prefix)
	return args.Error(0)
}

type MockSpaceProbe struct {
	mock.Mock
}

func NewMockSpaceProbe() *MockSpaceProbe {
	return &MockSpaceProbe{}
}

func (m *MockSpaceProbe) FreeBytes(path string) (uint64, error) {
	args := m.Called(path)
	return args.Get(0).(uint64), args.Error(1)
}
