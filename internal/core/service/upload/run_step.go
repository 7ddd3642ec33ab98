package upload

import (
	"context"
	"errors"
	"fmt"
	"geo-upload/internal/core/domain"
)

// runStep is reached directly only when a client asks for /run. The usual
// path executes the run inline while resolving the next step.
func (s *uploadService) runStep(ctx context.Context, req domain.StepRequest, session *domain.UploadSession) (stepOutcome, error) {
	if s.asyncEnabled() && req.WantsProgress {
		if err := s.startAsyncRun(ctx, req, session); err != nil {
			return stepOutcome{}, err
		}
		return stepOutcome{session: session, running: true}, nil
	}
	if err := s.runImport(ctx, session); err != nil {
		return stepOutcome{}, err
	}
	return advance(session), nil
}

// runImport runs the import job to completion
func (s *uploadService) runImport(ctx context.Context, session *domain.UploadSession) error {
	if err := session.MarkImportRun(); err != nil {
		return err
	}
	job, err := session.Job()
	if err != nil {
		return err
	}

	s.logger.Info("running import", "upload_id", session.ID, "job", job.String())
	if err := s.importer.RunToCompletion(ctx, job); err != nil {
		return err
	}

	if err := s.uow.UploadRepo().UpdateState(ctx, session.ID, domain.UploadStateImported); err != nil && !errors.Is(err, domain.ErrUploadNotFound) {
		s.logger.Warn("could not mark upload imported", "upload_id", session.ID, "error", err)
	}
	return nil
}

// startAsyncRun hands the import job to the worker
func (s *uploadService) startAsyncRun(ctx context.Context, req domain.StepRequest, session *domain.UploadSession) error {
	if err := session.MarkImportRun(); err != nil {
		return err
	}
	job, err := session.Job()
	if err != nil {
		return err
	}

	err = s.runs.PublishImportRun(ctx, domain.ImportRunRequest{
		UploadID:  session.ID.String(),
		ImportJob: job,
		UserID:    req.UserID,
	})
	if err != nil {
		return fmt.Errorf("could not queue import run: %w", err)
	}

	if err := s.uow.UploadRepo().UpdateState(ctx, session.ID, domain.UploadStateRunning); err != nil && !errors.Is(err, domain.ErrUploadNotFound) {
		s.logger.Warn("could not mark upload running", "upload_id", session.ID, "error", err)
	}
	return nil
}
