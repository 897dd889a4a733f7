package infographic

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFilename(t *testing.T) {
	at := time.UnixMilli(1710000000123)

	assert.Equal(t, "infographic-Trip-1710000000123.png", ExportFilename("Trip", at))
	assert.Equal(t, "infographic-Trip-2024-1710000000123.png", ExportFilename("Trip 2024", at))
	assert.Equal(t, "infographic-a-b-1710000000123.png", ExportFilename("a/b", at))
	assert.Equal(t, "infographic-notebook-1710000000123.png", ExportFilename("  ", at))
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	pngData := []byte("\x89PNG\r\n\x1a\nfake")
	at := time.UnixMilli(1710000000123)

	path, err := WriteFile(dir, "Trip", DataURL(pngData), at)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "infographic-Trip-1710000000123.png"), path)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngData, written)

	_, err = WriteFile(dir, "Trip", "not a data url", at)
	assert.ErrorIs(t, err, ErrInvalidDataURL)
}
