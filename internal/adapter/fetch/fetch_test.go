package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcherReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>hello</p></body></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5 * time.Second)
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, body, "hello")
}

func TestHTTPFetcherErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5 * time.Second)
	body, err := f.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Empty(t, body)
}

func TestHTTPFetcherUnreachableHost(t *testing.T) {
	f := NewHTTPFetcher(100 * time.Millisecond)
	body, err := f.Fetch(context.Background(), "http://127.0.0.1:1/unreachable")
	assert.Error(t, err)
	assert.Empty(t, body)
}

func TestFileFetcherSingleFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.txt"), []byte("file content"), 0o644))

	f := NewFileFetcher(dir)
	body, err := f.Fetch(context.Background(), "doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "file content", body)
}

func TestFileFetcherGlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.md"), []byte("beta"), 0o644))

	f := NewFileFetcher(dir)
	body, err := f.Fetch(context.Background(), "**/*.md")
	require.NoError(t, err)
	assert.Contains(t, body, "alpha")
	assert.Contains(t, body, "beta")
}

func TestFileFetcherMissingFile(t *testing.T) {
	f := NewFileFetcher(t.TempDir())
	body, err := f.Fetch(context.Background(), "absent.txt")
	assert.Error(t, err)
	assert.Empty(t, body)
}

func TestSourceFetcherRouting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("from http"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.txt"), []byte("from file"), 0o644))

	f := NewSourceFetcher(NewHTTPFetcher(5*time.Second), NewFileFetcher(dir))

	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "from http", body)

	body, err = f.Fetch(context.Background(), "doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "from file", body)
}
