package storage_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vestfab-as/quoting-api/internal/storage"
)

func TestStorageInterfaceCompliance(t *testing.T) {
	var _ storage.Storage = (*storage.LocalStorage)(nil)
	var _ storage.Storage = (*storage.AzureBlobStorage)(nil)
}

func TestNewLocalStorage_CreatesBaseDirectory(t *testing.T) {
	basePath := filepath.Join(t.TempDir(), "attachments")

	ls, err := storage.NewLocalStorage(basePath)
	require.NoError(t, err)
	require.NotNil(t, ls)

	info, err := os.Stat(basePath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalStorage_UploadDownloadRoundtrip(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	content := []byte("%PDF-1.4 fake drawing")
	storagePath, size, err := ls.Upload(context.Background(), "drawing.pdf", "application/pdf", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)
	assert.Equal(t, ".pdf", filepath.Ext(storagePath))

	reader, err := ls.Download(context.Background(), storagePath)
	require.NoError(t, err)
	defer reader.Close()

	downloaded, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, downloaded)
}

func TestLocalStorage_UploadEmptyFile(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	storagePath, size, err := ls.Upload(context.Background(), "empty.txt", "text/plain", bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Zero(t, size)
	assert.NotEmpty(t, storagePath)
}

func TestLocalStorage_UploadGeneratesUniquePaths(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	// Uploading the same filename repeatedly must never overwrite
	paths := make(map[string]bool)
	for i := 0; i < 5; i++ {
		storagePath, _, err := ls.Upload(context.Background(), "photo.jpg", "image/jpeg", bytes.NewReader([]byte("jpg")))
		require.NoError(t, err)
		assert.False(t, paths[storagePath], "duplicate storage path %s", storagePath)
		paths[storagePath] = true
	}
	assert.Len(t, paths, 5)
}

func TestLocalStorage_Download_NotFound(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	reader, err := ls.Download(context.Background(), "ab/cd/missing.pdf")
	assert.Nil(t, reader)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestLocalStorage_Delete(t *testing.T) {
	baseDir := t.TempDir()
	ls, err := storage.NewLocalStorage(baseDir)
	require.NoError(t, err)

	storagePath, _, err := ls.Upload(context.Background(), "old.txt", "text/plain", bytes.NewReader([]byte("stale")))
	require.NoError(t, err)

	require.NoError(t, ls.Delete(context.Background(), storagePath))

	_, err = os.Stat(filepath.Join(baseDir, storagePath))
	assert.True(t, os.IsNotExist(err))

	// Idempotent: deleting again is fine
	assert.NoError(t, ls.Delete(context.Background(), storagePath))
}
