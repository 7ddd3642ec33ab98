package upload_test

import (
	"archive/zip"
	"bytes"
	"context"
	"geo-upload/internal/adapters/eventbroker"
	"geo-upload/internal/adapters/importer"
	"geo-upload/internal/adapters/repository"
	"geo-upload/internal/adapters/session/bolt"
	"geo-upload/internal/adapters/storage"
	"geo-upload/internal/config"
	"geo-upload/internal/core/domain"
	"geo-upload/internal/core/port"
	"geo-upload/internal/core/service/upload"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testToken = "session-token"
	testUser  = "user-1"
)

var testJob = domain.JobHandle{ImportID: "42", TaskID: 0}

var defaultCfg = config.FileUploadConfig{
	MinFreeMB:        64,
	ProgressInterval: time.Second,
}

type fixture struct {
	uow      *repository.MockUnitOfWork
	sessions *bolt.SessionStore
	importer *importer.MockImportService
	staging  *storage.MockStorage
	space    *storage.MockSpaceProbe
	runs     *eventbroker.MockImportRunPublisher
	service  port.UploadService
}

// newFixture wires the service with mocks and a real session store. Ledger
// writes are accepted unless a test sets its own expectations first.
func newFixture(t *testing.T, cfg config.FileUploadConfig) *fixture {
	t.Helper()

	sessions, err := bolt.NewSessionStore(filepath.Join(t.TempDir(), "sessions.db"), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	f := &fixture{
		uow:      repository.NewMockUnitOfWork(),
		sessions: sessions,
		importer: importer.NewMockImportService(),
		staging:  storage.NewMockStorage(),
		space:    storage.NewMockSpaceProbe(),
		runs:     eventbroker.NewMockImportRunPublisher(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = upload.NewUploadService(f.uow, f.sessions, f.importer, f.staging, f.runs, f.space, cfg, logger)
	return f
}

func (f *fixture) acceptLedgerWrites() {
	f.uow.On("Execute", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.uow.GetUploadRepoMock().On("Upsert", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.uow.GetUploadRepoMock().On("UpdateState", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.uow.GetUploadFileRepoMock().On("CreateMany", mock.Anything, mock.Anything).Return(1, nil).Maybe()
}

// seed stores a session as if the client had completed the given step
func (f *fixture) seed(t *testing.T, uploadType domain.UploadType, resource domain.ResourceType, completed domain.Step) domain.UploadSession {
	t.Helper()
	id := uuid.New()
	session := domain.NewUploadSession(id, testUser, uploadType, domain.StagingPrefixFor(id), "data", "data", time.Now().UTC())
	require.NoError(t, session.SetImportJob(testJob))
	session.TargetResourceType = resource
	session.CompletedStep = completed
	if completed == domain.StepRun {
		session.ImportRun = true
	}
	require.NoError(t, f.sessions.Save(context.Background(), testToken, *session))
	return *session
}

func (f *fixture) stored(t *testing.T) *domain.UploadSession {
	t.Helper()
	session, err := f.sessions.Get(context.Background(), testToken)
	require.NoError(t, err)
	return session
}

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func uploadedFile(field, name string, data []byte) domain.UploadedFile {
	return domain.UploadedFile{
		Field: field,
		Name:  name,
		Size:  int64(len(data)),
		Open: func() (domain.FileContent, error) {
			return memFile{bytes.NewReader(data)}, nil
		},
	}
}

func zipArchive(t *testing.T, names ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func read(step domain.Step) domain.StepRequest {
	return domain.StepRequest{SessionToken: testToken, UserID: testUser, Step: step}
}

func write(step domain.Step, form map[string]string, files ...domain.UploadedFile) domain.StepRequest {
	return domain.StepRequest{SessionToken: testToken, UserID: testUser, Step: step, Write: true, Form: form, Files: files}
}

func csvItem(attrs ...domain.Attribute) *domain.ImportItem {
	return &domain.ImportItem{LayerName: "data", ResourceType: domain.ResourceTypeFeatureType, Attributes: attrs}
}
