package tarutil

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

var ErrUnsupportedArchiveSuffix = fmt.Errorf("archive name has an unsupported suffix")

// Writer produces a compressed tar archive from a set of file entries.
type Writer struct {
	compressor io.WriteCloser
	writer     *tar.Writer
}

// NewWriter creates a tar writer for the given archive path. Supports .tar, .tar.gz and
// .tar.zst extensions.
func NewWriter(archivePath string) (*Writer, error) {
	w, err := newCompressor(archivePath)
	if err != nil {
		return nil, err
	}

	return &Writer{
		compressor: w,
		writer:     tar.NewWriter(w),
	}, nil
}

func newCompressor(archivePath string) (io.WriteCloser, error) {
	archive, err := os.Create(archivePath)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasSuffix(archivePath, ".tar.gz"):
		return gzip.NewWriter(archive), nil
	case strings.HasSuffix(archivePath, ".tar.zst"):
		w, err := zstd.NewWriter(archive, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return nil, fmt.Errorf("unable to get zst compression stream: %w", err)
		}
		return w, nil
	case strings.HasSuffix(archivePath, ".tar"):
		return archive, nil
	}
	return nil, ErrUnsupportedArchiveSuffix
}

// WriteFiles adds each of the given paths to the archive, preserving the name relative to
// the path given (not the absolute path).
func (w *Writer) WriteFiles(paths ...string) error {
	for _, p := range paths {
		if err := w.writeFile(p); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unable to open file (%s): %w", path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("unable to get stat for file (%s): %w", path, err)
	}

	header := &tar.Header{
		Name:    stat.Name(),
		Size:    stat.Size(),
		Mode:    int64(stat.Mode()),
		ModTime: stat.ModTime(),
	}

	if err := w.writer.WriteHeader(header); err != nil {
		return fmt.Errorf("unable to write header for file (%s): %w", path, err)
	}

	if _, err := io.Copy(w.writer, f); err != nil {
		return fmt.Errorf("unable to copy data to the tar (file='%s'): %w", path, err)
	}

	return nil
}

func (w *Writer) Close() error {
	if w.writer != nil {
		err := w.writer.Close()
		w.writer = nil
		if err != nil {
			return fmt.Errorf("unable to close tar writer: %w", err)
		}
	}

	if w.compressor != nil {
		err := w.compressor.Close()
		w.compressor = nil
		return err
	}

	return nil
}
