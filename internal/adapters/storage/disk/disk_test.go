package disk_test

import (
	"geo-upload/internal/adapters/storage/disk"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpaceProbe_FreeBytes(t *testing.T) {
	// Arrange
	probe := disk.NewSpaceProbe()

	// Act
	free, err := probe.FreeBytes(t.TempDir())

	// Assert
	require.NoError(t, err)
	assert.Positive(t, free)
}

func TestSpaceProbe_FreeBytes_MissingPath(t *testing.T) {
	// Arrange
	probe := disk.NewSpaceProbe()

	// Act
	_, err := probe.FreeBytes(filepath.Join(t.TempDir(), "does-not-exist"))

	// Assert
	assert.Error(t, err)
}
