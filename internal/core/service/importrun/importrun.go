package importrun

import (
	"geo-upload/internal/core/port"
	"log/slog"
)

type importRunService struct {
	uow      port.UnitOfWork
	importer port.ImportService
	logger   *slog.Logger
}

// NewImportRunService creates the handler of queued import runs
func NewImportRunService(uow port.UnitOfWork, importer port.ImportService, logger *slog.Logger) port.MessageService {
	return &importRunService{
		uow:      uow,
		importer: importer,
		logger:   logger,
	}
}
