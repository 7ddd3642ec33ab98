package upload

import (
	"context"
	"fmt"
	"geo-upload/internal/core/domain"
)

// Progress returns the progress of the import of the active upload
func (s *uploadService) Progress(ctx context.Context, sessionToken string) (*domain.Progress, error) {
	session, err := s.sessions.Get(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	job, err := session.Job()
	if err != nil {
		return nil, err
	}

	progress, err := s.importer.Progress(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("could not read import progress: %w", err)
	}
	return &progress, nil
}
