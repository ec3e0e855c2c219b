package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty", func(t *testing.T) {
		_, err := ResolvePath("")
		assert.ErrorIs(t, err, ErrEmptyPath)
	})

	for _, bad := range []string{"a;rm", "a|b", "$(x)", "a`b`", "x\ny"} {
		t.Run("forbidden "+bad, func(t *testing.T) {
			_, err := ResolvePath(bad)
			assert.ErrorIs(t, err, ErrForbiddenChar)
		})
	}

	t.Run("missing file resolves to cleaned absolute path", func(t *testing.T) {
		got, err := ResolvePath(filepath.Join(dir, "sub", "..", "catalog.toml"))
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))
		assert.Equal(t, "catalog.toml", filepath.Base(got))
		assert.NotContains(t, got, "..")
	})

	t.Run("relative becomes absolute", func(t *testing.T) {
		got, err := ResolvePath("catalog.toml")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))
	})
}

func TestResolvePathInDir(t *testing.T) {
	base := t.TempDir()
	inside := filepath.Join(base, "catalog.toml")
	require.NoError(t, os.WriteFile(inside, []byte("x"), 0o600))

	got, err := ResolvePathInDir(inside, base)
	require.NoError(t, err)
	assert.Equal(t, "catalog.toml", filepath.Base(got))

	_, err = ResolvePathInDir(filepath.Join(base, "..", "escape.toml"), base)
	assert.ErrorIs(t, err, ErrOutsideDir)

	_, err = ResolvePathInDir(base+"-sibling/file", base)
	assert.ErrorIs(t, err, ErrOutsideDir)

	_, err = ResolvePathInDir(inside, "")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestReadFile(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "data.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	data, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	data, err = ReadFileInDir(path, base)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = ReadFile(filepath.Join(base, "missing.txt"))
	assert.True(t, os.IsNotExist(err))
}
