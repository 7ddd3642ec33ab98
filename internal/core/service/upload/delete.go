package upload

import (
	"context"
	"errors"
	"fmt"
	"geo-upload/internal/core/domain"
	"geo-upload/internal/core/port"
)

// DeleteUpload removes an interrupted upload owned by userID
func (s *uploadService) DeleteUpload(ctx context.Context, sessionToken string, userID string, importID string) error {
	upload, err := s.uow.UploadRepo().FindByImportID(ctx, importID)
	if err != nil {
		return err
	}
	if upload.UserID != userID {
		return domain.ErrForbidden
	}

	prefix := domain.StagingPrefixFor(upload.ID)
	if upload.Session != nil && upload.Session.StagingPrefix != "" {
		prefix = upload.Session.StagingPrefix
	}
	if err := s.staging.Release(ctx, prefix); err != nil {
		return fmt.Errorf("could not release staged files: %w", err)
	}

	err = s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		if err := uow.UploadFileRepo().DeleteByUploadID(ctx, upload.ID); err != nil {
			return err
		}
		return uow.UploadRepo().Delete(ctx, upload.ID)
	})
	if err != nil {
		return fmt.Errorf("could not delete upload %s: %w", upload.ID, err)
	}

	active, err := s.sessions.Get(ctx, sessionToken)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
	case err != nil:
		s.logger.Warn("could not read upload session", "error", err)
	case active.ID == upload.ID:
		if err := s.sessions.Delete(ctx, sessionToken); err != nil {
			s.logger.Warn("could not clear upload session", "upload_id", upload.ID, "error", err)
		}
	}

	s.logger.Info("upload deleted", "upload_id", upload.ID, "import_id", importID)
	return nil
}
