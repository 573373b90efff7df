package archive

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.db")
	compressedPath := filepath.Join(dir, "src.db.zst")
	restoredPath := filepath.Join(dir, "restored.db")

	original := bytes.Repeat([]byte("ticket data "), 4096)
	require.NoError(t, os.WriteFile(srcPath, original, 0o644))

	require.NoError(t, CompressFile(srcPath, compressedPath))

	info, err := os.Stat(compressedPath)
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(len(original)), "compressed output should beat the source size")

	compressed, err := os.Open(compressedPath)
	require.NoError(t, err)
	defer compressed.Close()

	require.NoError(t, DecompressStream(compressed, restoredPath))

	restored, err := os.ReadFile(restoredPath)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestCompressFile_MissingSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := CompressFile(filepath.Join(dir, "nope.db"), filepath.Join(dir, "out.zst"))
	assert.Error(t, err)
}

func TestDecompressStream_CorruptInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	err := DecompressStream(bytes.NewReader([]byte("not zstd at all")), filepath.Join(dir, "out.db"))
	assert.Error(t, err)
}

func TestIsNotFound_GenericError(t *testing.T) {
	t.Parallel()

	assert.False(t, isNotFound(errors.New("connection refused")))
}

func TestNewObjectStore_RequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewObjectStore(t.Context(), StoreConfig{Bucket: "b"})
	assert.Error(t, err)
}
