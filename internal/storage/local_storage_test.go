package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLocalStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)
	require.NotNil(t, storage)
	require.Equal(t, tempDir, storage.basePath)

	// Sprawdź, czy katalog został utworzony
	_, err = os.Stat(tempDir)
	require.NoError(t, err, "Base directory should be created")
}

func TestLocalStorage_SaveGetDelete(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	ctx := context.Background()
	path := "42/test_file_id_12345"
	content := "Hello, world!"

	// --- Test Save ---
	err = storage.Save(ctx, path, strings.NewReader(content), int64(len(content)), "text/plain")
	require.NoError(t, err)

	// Plik powinien fizycznie istnieć pod ścieżką obiektu
	expectedPath := filepath.Join(tempDir, "42", "test_file_id_12345")
	fileInfo, err := os.Stat(expectedPath)
	require.NoError(t, err, "File should exist after save")
	require.Equal(t, int64(len(content)), fileInfo.Size())

	// --- Test Get ---
	readCloser, err := storage.Get(ctx, path)
	require.NoError(t, err)

	retrievedContent, err := io.ReadAll(readCloser)
	require.NoError(t, err)
	readCloser.Close()
	require.Equal(t, content, string(retrievedContent))

	// --- Test Delete ---
	err = storage.Delete(ctx, path)
	require.NoError(t, err)

	_, err = os.Stat(expectedPath)
	require.Error(t, err)
	require.True(t, os.IsNotExist(err), "File should not exist after delete")
}

func TestLocalStorage_GetNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	_, err = storage.Get(context.Background(), "1/non_existent_id")
	require.Error(t, err)
}

func TestLocalStorage_DeleteNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	// Usunięcie nieistniejącego obiektu nie powinno zwracać błędu
	err = storage.Delete(context.Background(), "1/non_existent_id")
	require.NoError(t, err)
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	ctx := context.Background()
	for _, path := range []string{"../outside", "/etc/passwd", "a/../../b", "."} {
		err = storage.Save(ctx, path, bytes.NewReader([]byte("x")), 1, "text/plain")
		require.Error(t, err, "path %q should be rejected", path)

		_, err = storage.Get(ctx, path)
		require.Error(t, err, "path %q should be rejected", path)
	}
}

func TestLocalStorage_SaveWithLargeData(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	ctx := context.Background()
	path := "7/large_file_id"
	largeData := bytes.Repeat([]byte("a"), 1024*1024)

	err = storage.Save(ctx, path, bytes.NewReader(largeData), int64(len(largeData)), "application/octet-stream")
	require.NoError(t, err)

	readCloser, err := storage.Get(ctx, path)
	require.NoError(t, err)
	defer readCloser.Close()

	retrieved, err := io.ReadAll(readCloser)
	require.NoError(t, err)
	require.Equal(t, len(largeData), len(retrieved))
}
