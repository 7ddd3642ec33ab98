package importrun

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"geo-upload/internal/core/domain"

	"github.com/google/uuid"
)

// HandleMessage runs one queued import. A failed import is final and the
// message is acknowledged; any other error is returned so the message is
// delivered again.
func (s *importRunService) HandleMessage(ctx context.Context, data []byte) error {
	var req domain.ImportRunRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("could not unmarshal import run request: %v", err)
	}

	uploadID, err := uuid.Parse(req.UploadID)
	if err != nil {
		return fmt.Errorf("invalid upload id %q: %w", req.UploadID, err)
	}
	if req.ImportJob.ImportID == "" {
		return fmt.Errorf("import run request for %s has no import job", uploadID)
	}

	s.logger.Info("handling import run", "upload_id", uploadID, "job", req.ImportJob.String(), "user_id", req.UserID)

	s.setState(ctx, uploadID, domain.UploadStateRunning)

	runErr := s.importer.RunToCompletion(ctx, req.ImportJob)

	var importErr *domain.ImportRunError
	switch {
	case runErr == nil:
		s.setState(ctx, uploadID, domain.UploadStateImported)
		s.logger.Info("import run completed", "upload_id", uploadID)
		return nil
	case errors.As(runErr, &importErr):
		s.setState(ctx, uploadID, domain.UploadStateFailed)
		s.logger.Warn("import run failed", "upload_id", uploadID, "reason", importErr.Message)
		return nil
	default:
		return fmt.Errorf("could not run import %s: %w", req.ImportJob.String(), runErr)
	}
}

// setState records the ledger state. The ledger row may already be gone when
// the user deleted the upload meanwhile.
func (s *importRunService) setState(ctx context.Context, uploadID uuid.UUID, state domain.UploadState) {
	err := s.uow.UploadRepo().UpdateState(ctx, uploadID, state)
	switch {
	case errors.Is(err, domain.ErrUploadNotFound):
		s.logger.Warn("upload no longer in ledger", "upload_id", uploadID, "state", state)
	case err != nil:
		s.logger.Error("could not update upload state", "upload_id", uploadID, "state", state, "error", err)
	}
}
