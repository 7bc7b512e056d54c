package tarutil

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterUnsupportedSuffix(t *testing.T) {
	_, err := NewWriter(filepath.Join(t.TempDir(), "archive.zip"))
	assert.True(t, errors.Is(err, ErrUnsupportedArchiveSuffix))
}

func TestWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()

	src := filepath.Join(dir, "openioc.db")
	require.NoError(t, os.WriteFile(src, []byte("not really a database"), 0o644))

	archivePath := filepath.Join(dir, "archive.tar")
	w, err := NewWriter(archivePath)
	require.NoError(t, err)

	require.NoError(t, w.WriteFiles(src))
	require.NoError(t, w.Close())

	f, err := os.Open(archivePath)
	require.NoError(t, err)
	defer f.Close()

	r := tar.NewReader(f)
	header, err := r.Next()
	require.NoError(t, err)

	// entries carry the base name, not the source path
	assert.Equal(t, "openioc.db", header.Name)

	contents, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "not really a database", string(contents))

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}
