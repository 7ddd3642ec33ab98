package port

import (
	"context"
	"time"
)

// CleanupService is service that handles cleanup
type CleanupService interface {
	CleanupAbandonedUploads(ctx context.Context, before time.Time) error
	CleanupExpiredSessions(ctx context.Context, now time.Time) error
}
