package config_test

import (
	"geo-upload/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_BUCKET_NAME", "staging")
	t.Setenv("MINIO_ACCESS_KEY", "minioadmin")
	t.Setenv("MINIO_SECRET_KEY", "minioadmin")
	t.Setenv("IMPORTER_URL", "http://localhost:8081/geoserver/rest")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "geo")
	t.Setenv("DB_PASSWORD", "geo")
	t.Setenv("DB_NAME", "geo")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := config.Load()

		require.NoError(t, err)
		assert.False(t, cfg.Upload.AllowTimeStep)
		assert.False(t, cfg.Upload.AsyncImport)
		assert.Equal(t, "bolt", cfg.Session.Backend)
		assert.Equal(t, "upload_session", cfg.Session.CookieName)
		assert.Equal(t, uint64(64), cfg.Upload.MinFreeMB)
	})

	t.Run("time step without datastore", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("UPLOAD_SHOW_TIME_STEP", "true")

		_, err := config.Load()

		assert.ErrorIs(t, err, config.ErrTimeStepRequiresDatastore)
	})

	t.Run("async without nats", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("UPLOAD_ASYNC_IMPORT", "true")

		_, err := config.Load()

		assert.ErrorIs(t, err, config.ErrNATSRequired)
	})

	t.Run("async with time step", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("UPLOAD_ASYNC_IMPORT", "true")
		t.Setenv("UPLOAD_SHOW_TIME_STEP", "true")
		t.Setenv("NATS_URL", "nats://localhost:4222")

		cfg, err := config.Load()

		require.NoError(t, err)
		assert.True(t, cfg.Upload.AllowTimeStep)
	})

	t.Run("missing required", func(t *testing.T) {
		t.Setenv("MINIO_ENDPOINT", "")

		_, err := config.Load()

		assert.Error(t, err)
	})
}
