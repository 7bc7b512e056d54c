package file

import (
	"strings"
	"testing"

	"github.com/OneOfOne/xxhash"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "a.ioc", []byte("<ioc/>"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "b.ioc", []byte("<ioc id='x'/>"), 0o644))

	first, err := HashFile(fs, "a.ioc", xxhash.New64())
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	same, err := HashFile(fs, "a.ioc", xxhash.New64())
	require.NoError(t, err)
	assert.Equal(t, first, same)

	other, err := HashFile(fs, "b.ioc", xxhash.New64())
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	_, err = HashFile(fs, "missing.ioc", xxhash.New64())
	assert.Error(t, err)
}

func TestContentDigest(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "a.ioc", []byte("<ioc/>"), 0o644))

	digest, err := ContentDigest(fs, "a.ioc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "xxh64:"), "unexpected digest format: %q", digest)
}
