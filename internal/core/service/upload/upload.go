package upload

import (
	"geo-upload/internal/config"
	"geo-upload/internal/core/domain"
	"geo-upload/internal/core/port"
	"geo-upload/internal/core/service/sequence"
	"log/slog"
	"time"
)

type uploadService struct {
	uow      port.UnitOfWork
	sessions port.SessionStore
	importer port.ImportService
	staging  port.StagingStorage
	runs     port.ImportRunPublisher
	space    port.SpaceProbe
	policy   sequence.Policy
	cfg      config.FileUploadConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewUploadService creates the upload workflow orchestrator. runs may be nil,
// in which case every import runs synchronously.
func NewUploadService(
	uow port.UnitOfWork,
	sessions port.SessionStore,
	importer port.ImportService,
	staging port.StagingStorage,
	runs port.ImportRunPublisher,
	space port.SpaceProbe,
	cfg config.FileUploadConfig,
	logger *slog.Logger,
) port.UploadService {
	return &uploadService{
		uow:      uow,
		sessions: sessions,
		importer: importer,
		staging:  staging,
		runs:     runs,
		space:    space,
		policy:   sequence.NewPolicy(cfg.AllowTimeStep),
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *uploadService) asyncEnabled() bool {
	return s.cfg.AsyncImport && s.runs != nil
}

// asyncStep reports whether submitting the form being rendered hands the
// import to the worker, which is the case when run directly follows it
func (s *uploadService) asyncStep(session *domain.UploadSession) bool {
	if !s.asyncEnabled() {
		return false
	}
	next, err := s.policy.NextStep(session.UploadType, session.CompletedStep, 2)
	return err == nil && next == domain.StepRun
}
