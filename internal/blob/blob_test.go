package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutAndDelete(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir)
	ctx := context.Background()

	url, err := s.Put(ctx, []byte("fake-png"), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".png"))

	data, err := os.ReadFile(filepath.FromSlash(url))
	require.NoError(t, err)
	assert.Equal(t, "fake-png", string(data))

	require.NoError(t, s.Delete(ctx, url))
	_, err = os.Stat(filepath.FromSlash(url))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	require.NoError(t, s.Delete(ctx, url))
}

func TestLocalStoreExtensionByContentType(t *testing.T) {
	s := NewLocalStore(t.TempDir())
	ctx := context.Background()

	jpg, err := s.Put(ctx, []byte("x"), "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(jpg, ".jpg"))

	webp, err := s.Put(ctx, []byte("x"), "image/webp")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(webp, ".webp"))
}

func TestLocalStoreDeleteRejectsEscapingPaths(t *testing.T) {
	s := NewLocalStore(t.TempDir())
	err := s.Delete(context.Background(), "/etc/passwd")
	assert.Error(t, err)
}
