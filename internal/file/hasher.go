package file

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/OneOfOne/xxhash"
	"github.com/spf13/afero"
)

func HashFile(fs afero.Fs, path string, hasher hash.Hash) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file '%s': %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("failed to hash file '%s': %w", path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// ContentDigest returns a labeled xxh64 digest for the file at the given path, suitable for
// recording as an import provenance marking.
func ContentDigest(fs afero.Fs, path string) (string, error) {
	digest, err := HashFile(fs, path, xxhash.New64())
	if err != nil {
		return "", err
	}
	return "xxh64:" + digest, nil
}

func ValidateDigest(path, expected string, hasher hash.Hash) error {
	actual, err := HashFile(afero.NewOsFs(), path, hasher)
	if err != nil {
		return err
	}
	if actual != expected {
		return fmt.Errorf("digest mismatch for %q: expected %q, got %q", path, expected, actual)
	}
	return nil
}
