package cleanup

import (
	"geo-upload/internal/core/port"
	"log/slog"
)

type cleanupService struct {
	uow      port.UnitOfWork
	staging  port.StagingStorage
	sessions port.SessionStore
	logger   *slog.Logger
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(uow port.UnitOfWork, staging port.StagingStorage, sessions port.SessionStore, logger *slog.Logger) port.CleanupService {
	return &cleanupService{
		uow:      uow,
		staging:  staging,
		sessions: sessions,
		logger:   logger,
	}
}
