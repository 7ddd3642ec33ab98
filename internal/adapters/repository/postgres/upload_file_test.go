package postgres_test

import (
	"context"
	"geo-upload/internal/adapters/repository/postgres"
	"geo-upload/internal/core/domain"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqlUploadFileRepository(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	uploadRepo := postgres.NewSQLUploadRepository(dbConnection)
	fileRepo := postgres.NewSQLUploadFileRepository(dbConnection)

	stagedFiles := func(uploadID uuid.UUID, names ...string) []domain.UploadFile {
		files := make([]domain.UploadFile, len(names))
		for i, name := range names {
			files[i] = domain.UploadFile{
				ID:         uuid.New(),
				UploadID:   uploadID,
				FileName:   name,
				StorageKey: domain.StagingPrefixFor(uploadID) + name,
				SizeBytes:  int64(100 * (i + 1)),
				Checksum:   "checksum-" + name,
				CreatedAt:  time.Now().UTC(),
			}
		}
		return files
	}

	t.Run("CreateMany - Nominal case", func(t *testing.T) {
		// Arrange
		truncate()
		upload := newUpload("user-1", "501", domain.UploadStatePending)
		require.NoError(t, uploadRepo.Upsert(ctx, upload))
		files := stagedFiles(upload.ID, "roads.shp", "roads.dbf", "roads.shx")

		// Act
		count, err := fileRepo.CreateMany(ctx, files)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 3, count)
		saved, err := fileRepo.FindByUploadID(ctx, upload.ID)
		require.NoError(t, err)
		require.Len(t, saved, 3)
		assert.Equal(t, "roads.dbf", saved[0].FileName)
		assert.Equal(t, domain.StagingPrefixFor(upload.ID)+"roads.dbf", saved[0].StorageKey)
	})

	t.Run("CreateMany - Empty list", func(t *testing.T) {
		// Act
		count, err := fileRepo.CreateMany(ctx, nil)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("CreateMany - Error if upload does not exist", func(t *testing.T) {
		// Arrange
		truncate()

		// Act
		_, err := fileRepo.CreateMany(ctx, stagedFiles(uuid.New(), "lonely.csv"))

		// Assert
		require.Error(t, err)
	})

	t.Run("DeleteByUploadID - Nominal case", func(t *testing.T) {
		// Arrange
		truncate()
		upload := newUpload("user-1", "502", domain.UploadStatePending)
		require.NoError(t, uploadRepo.Upsert(ctx, upload))
		_, err := fileRepo.CreateMany(ctx, stagedFiles(upload.ID, "dem.tif"))
		require.NoError(t, err)

		// Act
		err = fileRepo.DeleteByUploadID(ctx, upload.ID)

		// Assert
		require.NoError(t, err)
		saved, err := fileRepo.FindByUploadID(ctx, upload.ID)
		require.NoError(t, err)
		assert.Empty(t, saved)
	})
}
