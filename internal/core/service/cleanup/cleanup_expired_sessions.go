package cleanup

import (
	"context"
	"fmt"
	"time"
)

// CleanupExpiredSessions drops client sessions whose ttl ran out before now
func (c *cleanupService) CleanupExpiredSessions(ctx context.Context, now time.Time) error {
	purged, err := c.sessions.PurgeExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	if purged == 0 {
		c.logger.Debug("no expired session to purge")
		return nil
	}
	c.logger.Info("expired sessions purged", "count", purged)
	return nil
}
