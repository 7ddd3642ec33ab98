package bolt

import (
	"context"
	"geo-upload/internal/core/domain"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) *SessionStore {
	t.Helper()
	store, err := NewSessionStore(filepath.Join(t.TempDir(), "sessions.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testSession() domain.UploadSession {
	id := uuid.New()
	session := domain.NewUploadSession(id, "user-1", domain.UploadTypeCSV, domain.StagingPrefixFor(id), "points.csv", "points", time.Now().UTC())
	_ = session.SetImportJob(domain.JobHandle{ImportID: "12", TaskID: 0})
	session.CompletedStep = domain.StepCSV
	session.Options.LatField = "lat"
	return *session
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save then get", func(t *testing.T) {
		// Arrange
		store := newTestStore(t, time.Hour)
		session := testSession()

		// Act
		require.NoError(t, store.Save(ctx, "token", session))
		got, err := store.Get(ctx, "token")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, session.ID, got.ID)
		assert.Equal(t, domain.StepCSV, got.CompletedStep)
		assert.Equal(t, "lat", got.Options.LatField)
		require.NotNil(t, got.ImportJob)
		assert.Equal(t, "12", got.ImportJob.ImportID)
	})

	t.Run("missing token", func(t *testing.T) {
		store := newTestStore(t, time.Hour)

		_, err := store.Get(ctx, "nope")

		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("last write wins", func(t *testing.T) {
		store := newTestStore(t, time.Hour)
		first, second := testSession(), testSession()

		require.NoError(t, store.Save(ctx, "token", first))
		require.NoError(t, store.Save(ctx, "token", second))
		got, err := store.Get(ctx, "token")

		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)
	})

	t.Run("delete", func(t *testing.T) {
		store := newTestStore(t, time.Hour)
		require.NoError(t, store.Save(ctx, "token", testSession()))

		require.NoError(t, store.Delete(ctx, "token"))
		_, err := store.Get(ctx, "token")

		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
		assert.NoError(t, store.Delete(ctx, "token"))
	})

	t.Run("expired sessions are hidden and purged", func(t *testing.T) {
		// Arrange
		store := newTestStore(t, time.Minute)
		start := time.Now()
		store.now = func() time.Time { return start }
		require.NoError(t, store.Save(ctx, "old", testSession()))
		store.now = func() time.Time { return start.Add(30 * time.Second) }
		require.NoError(t, store.Save(ctx, "fresh", testSession()))

		// Act
		store.now = func() time.Time { return start.Add(75 * time.Second) }
		_, getErr := store.Get(ctx, "old")
		purged, err := store.PurgeExpired(ctx, start.Add(75*time.Second))

		// Assert
		assert.ErrorIs(t, getErr, domain.ErrSessionNotFound)
		require.NoError(t, err)
		assert.Equal(t, 1, purged)
		_, err = store.Get(ctx, "fresh")
		assert.NoError(t, err)
	})
}
