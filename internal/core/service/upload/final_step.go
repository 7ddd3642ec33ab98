package upload

import (
	"context"
	"fmt"
	"geo-upload/internal/core/domain"
	"geo-upload/internal/core/port"
)

// finalStep publishes the imported layer and ends the upload
func (s *uploadService) finalStep(ctx context.Context, req domain.StepRequest, session *domain.UploadSession) (domain.StepResponse, error) {
	if !session.ImportRun {
		return domain.StepResponse{}, domain.ErrImportNotRun
	}
	job, err := session.Job()
	if err != nil {
		return domain.StepResponse{}, err
	}

	status, err := s.importer.JobState(ctx, job)
	if err != nil {
		return domain.StepResponse{}, err
	}
	switch status.State {
	case domain.JobStateRunning:
		return domain.StepResponse{}, &domain.ImportRunError{Message: "The import is still running, please wait for it to finish."}
	case domain.JobStateError:
		return domain.StepResponse{}, &domain.ImportRunError{Message: "The import failed: " + status.Reason}
	}

	metadata := domain.LayerMetadata{
		Title:       session.Options.Title,
		Abstract:    session.Options.Abstract,
		Permissions: session.Options.Permissions,
	}
	if session.Options.StyleFile != "" {
		metadata.StyleURL, err = s.staging.DownloadURL(ctx, session.Options.StyleFile)
		if err != nil {
			return domain.StepResponse{}, fmt.Errorf("could not sign staged style: %w", err)
		}
	}

	layer, err := s.importer.Finalize(ctx, job, session.UserID, metadata)
	if err != nil {
		return domain.StepResponse{}, err
	}

	session.CompletedStep = domain.StepFinal
	s.teardown(ctx, req, session)

	s.logger.Info("upload finalized", "upload_id", session.ID, "layer", layer.Name)
	return domain.StepResponse{Kind: domain.ResponseComplete, Step: domain.StepFinal, Layer: layer}, nil
}

// teardown drops the finished session, releases its staged files and closes
// the ledger row. The layer already exists, so failures are only logged.
func (s *uploadService) teardown(ctx context.Context, req domain.StepRequest, session *domain.UploadSession) {
	if err := s.sessions.Delete(ctx, req.SessionToken); err != nil {
		s.logger.Warn("could not clear upload session", "upload_id", session.ID, "error", err)
	}
	if err := s.staging.Release(ctx, session.StagingPrefix); err != nil {
		s.logger.Warn("could not release staged files", "upload_id", session.ID, "prefix", session.StagingPrefix, "error", err)
	}

	err := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		if err := uow.UploadRepo().Upsert(ctx, domain.UploadFromSession(*session, domain.UploadStateComplete)); err != nil {
			return err
		}
		return uow.UploadRepo().UpdateState(ctx, session.ID, domain.UploadStateComplete)
	})
	if err != nil {
		s.logger.Warn("could not mark upload complete", "upload_id", session.ID, "error", err)
	}
}
