package domain

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// UploadState represents the state of an upload ledger record
type UploadState string

const (
	UploadStatePending  UploadState = "pending"
	UploadStateRunning  UploadState = "running"
	UploadStateImported UploadState = "imported"
	UploadStateComplete UploadState = "complete"
	UploadStateFailed   UploadState = "failed"
)

// ResumableStates are the states an interrupted upload can be resumed from
var ResumableStates = []UploadState{UploadStatePending, UploadStateRunning, UploadStateImported}

// Upload is the durable ledger record of an upload
type Upload struct {
	ID            uuid.UUID      `json:"id"`
	ImportID      string         `json:"import_id"`
	UserID        string         `json:"user_id"`
	Name          string         `json:"name"`
	UploadType    UploadType     `json:"upload_type"`
	CompletedStep Step           `json:"completed_step"`
	State         UploadState    `json:"state"`
	Session       *UploadSession `json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// UploadFromSession snapshots a session into a ledger record
func UploadFromSession(session UploadSession, state UploadState) Upload {
	upload := Upload{
		ID:            session.ID,
		UserID:        session.UserID,
		Name:          session.LayerName,
		UploadType:    session.UploadType,
		CompletedStep: session.CompletedStep,
		State:         state,
		Session:       &session,
		CreatedAt:     session.CreatedAt,
	}
	if session.ImportJob != nil {
		upload.ImportID = session.ImportJob.ImportID
	}
	return upload
}

// UploadFile is a staged file belonging to an upload
type UploadFile struct {
	ID         uuid.UUID
	UploadID   uuid.UUID
	FileName   string
	StorageKey string
	SizeBytes  int64
	Checksum   string
	CreatedAt  time.Time
}

// FileContent is the readable body of a file received by the save step
type FileContent interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Closer
}

// UploadedFile is a file received by the save step
type UploadedFile struct {
	Field string
	Name  string
	Size  int64
	Open  func() (FileContent, error)
}
