package port

import (
	"context"
	"geo-upload/internal/core/domain"
	"time"
)

// SessionStore keeps the active upload session of each client token
type SessionStore interface {
	Get(ctx context.Context, token string) (*domain.UploadSession, error)
	Save(ctx context.Context, token string, session domain.UploadSession) error
	Delete(ctx context.Context, token string) error
	// PurgeExpired removes sessions that expired before now and returns how many were removed
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}
