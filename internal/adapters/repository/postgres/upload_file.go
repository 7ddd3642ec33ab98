package postgres

import (
	"context"
	"fmt"
	"geo-upload/internal/core/domain"
	"geo-upload/internal/core/port"
	"strings"
	"time"

	"github.com/google/uuid"
)

type sqlUploadFileRepository struct {
	db SQLQuerier
}

// NewSQLUploadFileRepository creates the staged file repository
func NewSQLUploadFileRepository(db SQLQuerier) port.UploadFileRepository {
	return &sqlUploadFileRepository{db: db}
}

// CreateMany records the staged files of an upload
func (s *sqlUploadFileRepository) CreateMany(ctx context.Context, files []domain.UploadFile) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}

	const columns = 7
	placeholders := make([]string, len(files))
	args := make([]any, 0, len(files)*columns)
	for i, file := range files {
		base := i * columns
		placeholders[i] = fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)

		createdAt := file.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		args = append(args, file.ID, file.UploadID, file.FileName, file.StorageKey, file.SizeBytes, file.Checksum, createdAt)
	}

	query := fmt.Sprintf(
		"INSERT INTO upload_files (id, upload_id, file_name, storage_key, size_bytes, checksum, created_at) VALUES %s",
		strings.Join(placeholders, ", "),
	)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(rowsAffected), nil
}

// FindByUploadID lists the staged files of an upload
func (s *sqlUploadFileRepository) FindByUploadID(ctx context.Context, uploadID uuid.UUID) ([]domain.UploadFile, error) {
	query := `
		SELECT id, upload_id, file_name, storage_key, size_bytes, checksum, created_at
		FROM upload_files
		WHERE upload_id = $1
		ORDER BY file_name`

	rows, err := s.db.QueryContext(ctx, query, uploadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []domain.UploadFile
	for rows.Next() {
		var file domain.UploadFile
		if err := rows.Scan(
			&file.ID,
			&file.UploadID,
			&file.FileName,
			&file.StorageKey,
			&file.SizeBytes,
			&file.Checksum,
			&file.CreatedAt,
		); err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return files, nil
}

// DeleteByUploadID deletes the staged file rows of an upload
func (s *sqlUploadFileRepository) DeleteByUploadID(ctx context.Context, uploadID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM upload_files WHERE upload_id = $1`, uploadID)
	return err
}
