package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/filedrop/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileReader_InfoAndReadAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	content := []byte("jpeg bytes")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	r := NewFileReader()
	ctx := context.Background()

	info, err := r.Info(ctx, path)
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.Equal(t, int64(len(content)), info.Size)

	data, err := r.ReadAll(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestFileReader_MissingFile(t *testing.T) {
	r := NewFileReader()
	ctx := context.Background()

	info, err := r.Info(ctx, filepath.Join(t.TempDir(), "absent.bin"))
	require.NoError(t, err)
	assert.False(t, info.Exists)

	_, err = r.ReadAll(ctx, filepath.Join(t.TempDir(), "absent.bin"))
	require.ErrorIs(t, err, common.ErrResourceUnavailable)
}

func TestFileReader_DirectoryIsNotASource(t *testing.T) {
	r := NewFileReader()

	info, err := r.Info(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.False(t, info.Exists)
}

func TestHTTPReader_InfoAndReadAll(t *testing.T) {
	content := []byte("object bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(content)
	}))
	t.Cleanup(srv.Close)

	r := NewHTTPReader(srv.Client())
	ctx := context.Background()

	info, err := r.Info(ctx, srv.URL)
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.Equal(t, int64(len(content)), info.Size)

	data, err := r.ReadAll(ctx, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestHTTPReader_MissingObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	r := NewHTTPReader(srv.Client())
	ctx := context.Background()

	info, err := r.Info(ctx, srv.URL)
	require.NoError(t, err)
	assert.False(t, info.Exists)

	_, err = r.ReadAll(ctx, srv.URL)
	require.ErrorIs(t, err, common.ErrResourceUnavailable)
}

func TestNewReader_SelectsByScheme(t *testing.T) {
	assert.IsType(t, &HTTPReader{}, NewReader("https://files.example/blob/1", nil))
	assert.IsType(t, &HTTPReader{}, NewReader("http://files.example/blob/1", nil))
	assert.IsType(t, &FileReader{}, NewReader("/tmp/file.bin", nil))
}
