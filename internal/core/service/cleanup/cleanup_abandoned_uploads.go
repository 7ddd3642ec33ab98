package cleanup

import (
	"context"
	"geo-upload/internal/core/domain"
	"geo-upload/internal/core/port"
	"time"
)

// CleanupAbandonedUploads deletes resumable uploads not touched since before,
// with their staged files. A failing upload does not stop the sweep.
func (c *cleanupService) CleanupAbandonedUploads(ctx context.Context, before time.Time) error {

	uploads, err := c.uow.UploadRepo().FindStale(ctx, before)
	if err != nil {
		return err
	}

	removed := 0
	for _, upload := range uploads {

		prefix := domain.StagingPrefixFor(upload.ID)
		if upload.Session != nil && upload.Session.StagingPrefix != "" {
			prefix = upload.Session.StagingPrefix
		}

		if releaseErr := c.staging.Release(ctx, prefix); releaseErr != nil {
			c.logger.Error("Failed to release abandoned upload files", "upload_id", upload.ID, "err", releaseErr)
			continue
		}

		txErr := c.uow.Execute(ctx, func(uow port.UnitOfWork) error {
			if executeErr := uow.UploadFileRepo().DeleteByUploadID(ctx, upload.ID); executeErr != nil {
				return executeErr
			}
			return uow.UploadRepo().Delete(ctx, upload.ID)
		})
		if txErr != nil {
			c.logger.Error("Failed to delete abandoned upload", "upload_id", upload.ID, "err", txErr)
			continue
		}
		removed++
	}
	c.logger.Info("abandoned uploads cleanup completed", "found", len(uploads), "removed", removed)
	return nil
}
