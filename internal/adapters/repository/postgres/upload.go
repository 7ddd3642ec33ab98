package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"geo-upload/internal/core/domain"
	"geo-upload/internal/core/port"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uploadColumns = `id, import_id, user_id, name, upload_type, completed_step, state, session, created_at, updated_at`

type sqlUploadRepository struct {
	db SQLQuerier
}

// NewSQLUploadRepository creates the ledger repository
func NewSQLUploadRepository(db SQLQuerier) port.UploadRepository {
	return &sqlUploadRepository{db: db}
}

// Upsert inserts the upload or refreshes its snapshot. A pending write never
// moves a row back from a later state.
func (s *sqlUploadRepository) Upsert(ctx context.Context, upload domain.Upload) error {
	// jsonb is sent as text, lib/pq would encode []byte as bytea
	var snapshot sql.NullString
	if upload.Session != nil {
		data, err := json.Marshal(upload.Session)
		if err != nil {
			return fmt.Errorf("could not encode session snapshot: %w", err)
		}
		snapshot = sql.NullString{String: string(data), Valid: true}
	}

	createdAt := upload.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO uploads (
			id, import_id, user_id, name, upload_type, completed_step, state, session, created_at
		) VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			import_id = COALESCE(EXCLUDED.import_id, uploads.import_id),
			name = EXCLUDED.name,
			completed_step = EXCLUDED.completed_step,
			state = CASE WHEN EXCLUDED.state = 'pending' THEN uploads.state ELSE EXCLUDED.state END,
			session = EXCLUDED.session,
			updated_at = now()`

	_, err := s.db.ExecContext(
		ctx,
		query,
		upload.ID,
		upload.ImportID,
		upload.UserID,
		upload.Name,
		upload.UploadType,
		upload.CompletedStep,
		upload.State,
		snapshot,
		createdAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("import %s is already recorded: %w", upload.ImportID, err)
		}
		return err
	}
	return nil
}

// FindByImportID finds an upload by the import job id
func (s *sqlUploadRepository) FindByImportID(ctx context.Context, importID string) (*domain.Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM uploads WHERE import_id = $1`

	row, err := scanUpload(s.db.QueryRowContext(ctx, query, importID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUploadNotFound, importID)
		}
		return nil, err
	}
	return row.ToDomain()
}

// FindResumableByUser lists the unfinished uploads of a user, newest first
func (s *sqlUploadRepository) FindResumableByUser(ctx context.Context, userID string) ([]domain.Upload, error) {
	query := `
		SELECT ` + uploadColumns + `
		FROM uploads
		WHERE user_id = $1 AND state = ANY($2) AND import_id IS NOT NULL
		ORDER BY updated_at DESC`

	return s.list(ctx, query, userID, pq.Array(resumableStates()))
}

// FindStale lists unfinished uploads not updated since before
func (s *sqlUploadRepository) FindStale(ctx context.Context, before time.Time) ([]domain.Upload, error) {
	query := `
		SELECT ` + uploadColumns + `
		FROM uploads
		WHERE state = ANY($1) AND updated_at < $2`

	return s.list(ctx, query, pq.Array(resumableStates()), before)
}

// UpdateState updates state
func (s *sqlUploadRepository) UpdateState(ctx context.Context, id uuid.UUID, state domain.UploadState) error {
	query := `UPDATE uploads SET state = $1, updated_at = now() WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, state, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrUploadNotFound
	}

	return nil
}

// Delete deletes an upload and, by cascade, its files
func (s *sqlUploadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return domain.ErrUploadNotFound
	}

	return nil
}

func (s *sqlUploadRepository) list(ctx context.Context, query string, args ...any) ([]domain.Upload, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uploads []domain.Upload
	for rows.Next() {
		row, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		upload, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, *upload)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return uploads, nil
}

func resumableStates() []string {
	states := make([]string, len(domain.ResumableStates))
	for i, state := range domain.ResumableStates {
		states[i] = string(state)
	}
	return states
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUpload(scanner rowScanner) (*dbUpload, error) {
	var row dbUpload
	err := scanner.Scan(
		&row.ID,
		&row.ImportID,
		&row.UserID,
		&row.Name,
		&row.UploadType,
		&row.CompletedStep,
		&row.State,
		&row.Session,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

type dbUpload struct {
	ID            uuid.UUID      `db:"id"`
	ImportID      sql.NullString `db:"import_id"`
	UserID        string         `db:"user_id"`
	Name          string         `db:"name"`
	UploadType    string         `db:"upload_type"`
	CompletedStep string         `db:"completed_step"`
	State         string         `db:"state"`
	Session       []byte         `db:"session"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// ToDomain converts db obj to domain
func (u *dbUpload) ToDomain() (*domain.Upload, error) {
	upload := &domain.Upload{
		ID:            u.ID,
		ImportID:      u.ImportID.String,
		UserID:        u.UserID,
		Name:          u.Name,
		UploadType:    domain.UploadType(u.UploadType),
		CompletedStep: domain.Step(u.CompletedStep),
		State:         domain.UploadState(u.State),
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}

	if len(u.Session) > 0 {
		var session domain.UploadSession
		if err := json.Unmarshal(u.Session, &session); err != nil {
			return nil, fmt.Errorf("could not decode session snapshot of %s: %w", u.ID, err)
		}
		upload.Session = &session
	}
	return upload, nil
}
