package upload

import (
	"context"
	"fmt"
	"geo-upload/internal/core/domain"
	"slices"
)

// resume rebuilds the session of an interrupted upload from the ledger and
// sends the client to its next step
func (s *uploadService) resume(ctx context.Context, req domain.StepRequest) (domain.StepResponse, error) {
	upload, err := s.uow.UploadRepo().FindByImportID(ctx, req.ResumeID)
	if err != nil {
		return domain.StepResponse{}, err
	}
	if upload.UserID != req.UserID {
		return domain.StepResponse{}, fmt.Errorf("%w: %s", domain.ErrUploadNotFound, req.ResumeID)
	}
	if !slices.Contains(domain.ResumableStates, upload.State) {
		return domain.StepResponse{}, fmt.Errorf("%w: %s is %s", domain.ErrUploadNotFound, req.ResumeID, upload.State)
	}
	if upload.Session == nil {
		return domain.StepResponse{}, fmt.Errorf("upload %s has no session snapshot", upload.ID)
	}

	session := *upload.Session
	session.CompletedStep = upload.CompletedStep

	if err := s.sessions.Save(ctx, req.SessionToken, session); err != nil {
		return domain.StepResponse{}, fmt.Errorf("could not restore upload session: %w", err)
	}

	s.logger.Info("upload resumed", "upload_id", upload.ID, "completed_step", session.CompletedStep, "state", upload.State)

	if upload.State == domain.UploadStateRunning {
		return domain.StepResponse{Kind: domain.ResponseProgress, Step: domain.StepFinal}, nil
	}

	resp, err := s.nextStepResponse(ctx, req, &session)
	if err != nil {
		return domain.StepResponse{}, err
	}
	s.persist(ctx, req, &session)
	return resp, nil
}
