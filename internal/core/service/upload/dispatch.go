package upload

import (
	"context"
	"errors"
	"fmt"
	"geo-upload/internal/core/domain"

	"github.com/google/uuid"
)

// stepOutcome is what a step handler decided. A nil form means the step is
// complete and the workflow advances.
type stepOutcome struct {
	session *domain.UploadSession
	form    *domain.FormView
	// running is set when the import was handed to the worker
	running bool
}

func render(session *domain.UploadSession, form *domain.FormView) stepOutcome {
	return stepOutcome{session: session, form: form}
}

func advance(session *domain.UploadSession) stepOutcome {
	return stepOutcome{session: session}
}

// HandleStep runs one request of the upload workflow
func (s *uploadService) HandleStep(ctx context.Context, req domain.StepRequest) (resp domain.StepResponse) {
	var session *domain.UploadSession

	defer func() {
		if r := recover(); r != nil {
			resp = s.fail(ctx, req, session, fmt.Errorf("panic in %s step: %v", req.Step, r))
		}
	}()

	step := req.Step
	if step == "" || step == domain.StepNone {
		if req.ResumeID != "" {
			resp, err := s.resume(ctx, req)
			if err != nil {
				return s.errorResponse(ctx, req, nil, err)
			}
			return resp
		}

		if err := s.sessions.Delete(ctx, req.SessionToken); err != nil {
			s.logger.Warn("could not clear upload session", "error", err)
		}
		step = domain.StepSave
	}

	if step != domain.StepSave {
		loaded, err := s.sessions.Get(ctx, req.SessionToken)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.StepResponse{Kind: domain.ResponseNoUpload}
		}
		if err != nil {
			return s.fail(ctx, req, nil, fmt.Errorf("could not load upload session: %w", err))
		}
		session = loaded

		if req.Write && !s.policy.Contains(session.UploadType, step) {
			return s.errorResponse(ctx, req, session, fmt.Errorf("%w: %s is not a %s step", domain.ErrStepNotInSequence, step, session.UploadType))
		}
		if !req.Write {
			previous, err := s.policy.PreviousStep(session.UploadType, step)
			if err != nil {
				return s.errorResponse(ctx, req, session, err)
			}
			session.CompletedStep = previous
		}
	}

	if step == domain.StepFinal {
		resp, err := s.finalStep(ctx, req, session)
		if err != nil {
			return s.errorResponse(ctx, req, session, err)
		}
		return resp
	}

	outcome, err := s.dispatch(ctx, step, req, session)
	if err != nil {
		return s.errorResponse(ctx, req, session, err)
	}
	if outcome.session != nil {
		session = outcome.session
	}

	if outcome.form != nil {
		if session != nil {
			s.persist(ctx, req, session)
		}
		return domain.StepResponse{Kind: domain.ResponseForm, Step: step, Form: outcome.form}
	}

	session.CompletedStep = step
	if outcome.running {
		s.persist(ctx, req, session)
		return domain.StepResponse{Kind: domain.ResponseProgress, Step: domain.StepFinal}
	}

	resp, err = s.nextStepResponse(ctx, req, session)
	if err != nil {
		return s.errorResponse(ctx, req, session, err)
	}

	s.persist(ctx, req, session)
	return resp
}

func (s *uploadService) dispatch(ctx context.Context, step domain.Step, req domain.StepRequest, session *domain.UploadSession) (stepOutcome, error) {
	switch step {
	case domain.StepSave:
		return s.saveStep(ctx, req)
	case domain.StepSRS:
		return s.srsStep(ctx, req, session)
	case domain.StepCSV:
		return s.csvStep(ctx, req, session)
	case domain.StepTime:
		return s.timeStep(ctx, req, session)
	case domain.StepRun:
		return s.runStep(ctx, req, session)
	default:
		return stepOutcome{}, fmt.Errorf("%w: %q", domain.ErrUnknownStep, step)
	}
}

// nextStepResponse resolves the step after session.CompletedStep. Transition
// steps are executed inline until an interactive step is reached.
func (s *uploadService) nextStepResponse(ctx context.Context, req domain.StepRequest, session *domain.UploadSession) (domain.StepResponse, error) {
	steps, err := s.policy.SequenceFor(session.UploadType)
	if err != nil {
		return domain.StepResponse{}, err
	}

	for range len(steps) + 1 {
		next, err := s.policy.NextStep(session.UploadType, session.CompletedStep, 1)
		if err != nil {
			return domain.StepResponse{}, err
		}

		switch next {
		case domain.StepTime:
			if session.TargetResourceType != domain.ResourceTypeFeatureType {
				session.CompletedStep = domain.StepTime
				continue
			}
		case domain.StepRun:
			if s.asyncEnabled() && req.WantsProgress {
				if err := s.startAsyncRun(ctx, req, session); err != nil {
					return domain.StepResponse{}, err
				}
				session.CompletedStep = domain.StepRun
				return domain.StepResponse{Kind: domain.ResponseProgress, Step: domain.StepFinal}, nil
			}
			if err := s.runImport(ctx, session); err != nil {
				return domain.StepResponse{}, err
			}
			session.CompletedStep = domain.StepRun
			continue
		}

		return domain.StepResponse{Kind: domain.ResponseRedirect, Step: next}, nil
	}

	return domain.StepResponse{}, fmt.Errorf("no interactive step after %s for %s upload", session.CompletedStep, session.UploadType)
}

// persist stores the session for the client and mirrors it into the ledger.
// Ledger failures do not fail the request.
func (s *uploadService) persist(ctx context.Context, req domain.StepRequest, session *domain.UploadSession) {
	if err := s.sessions.Save(ctx, req.SessionToken, *session); err != nil {
		s.logger.Error("could not store upload session", "upload_id", session.ID, "error", err)
	}
	if err := s.uow.UploadRepo().Upsert(ctx, domain.UploadFromSession(*session, domain.UploadStatePending)); err != nil {
		s.logger.Warn("could not sync upload ledger", "upload_id", session.ID, "error", err)
	}
}

// errorResponse maps an error to the response shape of its kind. Anything
// unclassified is treated as unrecoverable.
func (s *uploadService) errorResponse(ctx context.Context, req domain.StepRequest, session *domain.UploadSession, err error) domain.StepResponse {
	var (
		validationErr  *domain.ValidationError
		unsupportedErr *domain.UnsupportedTypeError
		startErr       *domain.ImportStartError
		configErr      *domain.ImportConfigError
		runErr         *domain.ImportRunError
	)

	switch {
	case errors.As(err, &validationErr):
		return failure(domain.FailureValidation, validationErr.Messages...)
	case errors.As(err, &unsupportedErr):
		return failure(domain.FailureUnsupported, unsupportedErr.Error())
	case errors.As(err, &startErr):
		return failure(domain.FailureImport, startErr.Message)
	case errors.As(err, &configErr):
		return failure(domain.FailureImport, configErr.Message)
	case errors.As(err, &runErr):
		return failure(domain.FailureImport, runErr.Message)
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrUploadNotFound):
		return failure(domain.FailureNotFound, "The upload could not be found.")
	case errors.Is(err, domain.ErrForbidden):
		return failure(domain.FailureForbidden, "You are not allowed to change this upload.")
	case errors.Is(err, domain.ErrStepNotInSequence),
		errors.Is(err, domain.ErrUnknownStep),
		errors.Is(err, domain.ErrImportAlreadyRun),
		errors.Is(err, domain.ErrImportNotStarted),
		errors.Is(err, domain.ErrImportNotRun):
		return failure(domain.FailureBadRequest, err.Error())
	default:
		return s.fail(ctx, req, session, err)
	}
}

func failure(kind domain.FailureKind, messages ...string) domain.StepResponse {
	return domain.StepResponse{Kind: domain.ResponseError, Failure: kind, Errors: messages}
}

// fail reports an unexpected error under a correlation code and tears the
// session down, releasing its staged files
func (s *uploadService) fail(ctx context.Context, req domain.StepRequest, session *domain.UploadSession, err error) domain.StepResponse {
	code := uuid.NewString()
	s.logger.Error("unexpected upload error", "code", code, "step", req.Step, "user_id", req.UserID, "error", err)

	if session != nil {
		if releaseErr := s.staging.Release(ctx, session.StagingPrefix); releaseErr != nil {
			s.logger.Warn("could not release staged files", "code", code, "prefix", session.StagingPrefix, "error", releaseErr)
		}
		if deleteErr := s.sessions.Delete(ctx, req.SessionToken); deleteErr != nil {
			s.logger.Warn("could not clear upload session", "code", code, "error", deleteErr)
		}
		if stateErr := s.uow.UploadRepo().UpdateState(ctx, session.ID, domain.UploadStateFailed); stateErr != nil && !errors.Is(stateErr, domain.ErrUploadNotFound) {
			s.logger.Warn("could not mark upload failed", "code", code, "upload_id", session.ID, "error", stateErr)
		}
	}

	return domain.StepResponse{
		Kind:    domain.ResponseError,
		Failure: domain.FailureUnexpected,
		Errors:  []string{"Unexpected Error:", "Please report the following code: " + code},
		Code:    code,
	}
}
