package upload_test

import (
	"context"
	"geo-upload/internal/core/domain"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ledgerUpload(owner string, completed domain.Step, state domain.UploadState) *domain.Upload {
	id := uuid.New()
	session := domain.NewUploadSession(id, owner, domain.UploadTypeCSV, domain.StagingPrefixFor(id), "data.csv", "data", time.Now().UTC())
	session.ImportJob = &domain.JobHandle{ImportID: testJob.ImportID, TaskID: testJob.TaskID}
	session.TargetResourceType = domain.ResourceTypeFeatureType
	session.CompletedStep = completed
	session.ImportRun = completed == domain.StepRun

	upload := domain.UploadFromSession(*session, state)
	return &upload
}

func resumeRequest() domain.StepRequest {
	return domain.StepRequest{SessionToken: testToken, UserID: testUser, ResumeID: testJob.ImportID}
}

func TestUploadService_Resume(t *testing.T) {
	ctx := context.Background()

	t.Run("restores the session and redirects to the next step", func(t *testing.T) {
		// Arrange
		f := newFixture(t, defaultCfg)
		upload := ledgerUpload(testUser, domain.StepSave, domain.UploadStatePending)
		f.uow.GetUploadRepoMock().On("FindByImportID", ctx, testJob.ImportID).Return(upload, nil)
		f.uow.GetUploadRepoMock().On("Upsert", ctx, mock.Anything).Return(nil)

		// Act
		resp := f.service.HandleStep(ctx, resumeRequest())

		// Assert
		require.Equal(t, domain.ResponseRedirect, resp.Kind, resp.Errors)
		assert.Equal(t, domain.StepCSV, resp.Step)
		session := f.stored(t)
		assert.Equal(t, upload.ID, session.ID)
		assert.Equal(t, domain.StepSave, session.CompletedStep)
	})

	t.Run("running import goes to the progress view", func(t *testing.T) {
		// Arrange
		f := newFixture(t, defaultCfg)
		upload := ledgerUpload(testUser, domain.StepRun, domain.UploadStateRunning)
		f.uow.GetUploadRepoMock().On("FindByImportID", ctx, testJob.ImportID).Return(upload, nil)

		// Act
		resp := f.service.HandleStep(ctx, resumeRequest())

		// Assert
		require.Equal(t, domain.ResponseProgress, resp.Kind, resp.Errors)
		assert.Equal(t, domain.StepFinal, resp.Step)
		assert.True(t, f.stored(t).ImportRun)
		f.importer.AssertNotCalled(t, "RunToCompletion", mock.Anything, mock.Anything)
	})

	t.Run("uploads of other users are not found", func(t *testing.T) {
		// Arrange
		f := newFixture(t, defaultCfg)
		f.uow.GetUploadRepoMock().On("FindByImportID", ctx, testJob.ImportID).
			Return(ledgerUpload("someone-else", domain.StepSave, domain.UploadStatePending), nil)

		// Act
		resp := f.service.HandleStep(ctx, resumeRequest())

		// Assert
		require.Equal(t, domain.ResponseError, resp.Kind)
		assert.Equal(t, domain.FailureNotFound, resp.Failure)
		_, err := f.sessions.Get(ctx, testToken)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	for _, state := range []domain.UploadState{domain.UploadStateComplete, domain.UploadStateFailed} {
		t.Run(string(state)+" uploads cannot be resumed", func(t *testing.T) {
			// Arrange
			f := newFixture(t, defaultCfg)
			f.uow.GetUploadRepoMock().On("FindByImportID", ctx, testJob.ImportID).
				Return(ledgerUpload(testUser, domain.StepFinal, state), nil)

			// Act
			resp := f.service.HandleStep(ctx, resumeRequest())

			// Assert
			require.Equal(t, domain.ResponseError, resp.Kind)
			assert.Equal(t, domain.FailureNotFound, resp.Failure)
			_, err := f.sessions.Get(ctx, testToken)
			assert.ErrorIs(t, err, domain.ErrSessionNotFound)
			f.importer.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			f.uow.GetUploadRepoMock().AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		})
	}

	t.Run("unknown import", func(t *testing.T) {
		// Arrange
		f := newFixture(t, defaultCfg)
		f.uow.GetUploadRepoMock().On("FindByImportID", ctx, testJob.ImportID).
			Return((*domain.Upload)(nil), domain.ErrUploadNotFound)

		// Act
		resp := f.service.HandleStep(ctx, resumeRequest())

		// Assert
		require.Equal(t, domain.ResponseError, resp.Kind)
		assert.Equal(t, domain.FailureNotFound, resp.Failure)
	})

	t.Run("missing snapshot is unexpected", func(t *testing.T) {
		// Arrange
		f := newFixture(t, defaultCfg)
		upload := ledgerUpload(testUser, domain.StepSave, domain.UploadStatePending)
		upload.Session = nil
		f.uow.GetUploadRepoMock().On("FindByImportID", ctx, testJob.ImportID).Return(upload, nil)

		// Act
		resp := f.service.HandleStep(ctx, resumeRequest())

		// Assert
		require.Equal(t, domain.ResponseError, resp.Kind)
		assert.Equal(t, domain.FailureUnexpected, resp.Failure)
		f.staging.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	})
}
