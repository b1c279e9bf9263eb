package mingle

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticFixture(t *testing.T) *StaticFS {
	fsys := fstest.MapFS{
		"index.html":    {Data: []byte("<html>mingle</html>")},
		"assets/app.js": {Data: []byte("console.log('mingle')")},
	}
	sfs, err := NewStaticFS(fsys, "index.html", map[string]string{
		"index.html": "no-cache",
		"assets/*":   "public, max-age=31536000, immutable",
	})
	require.NoError(t, err)
	return sfs
}

func TestStaticFSServesFiles(t *testing.T) {
	sfs := staticFixture(t)

	f, err := sfs.Open("/assets/app.js")
	require.NoError(t, err)
	defer f.Close()

	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "console.log('mingle')", string(content))
}

func TestStaticFSFallsBackToIndex(t *testing.T) {
	sfs := staticFixture(t)

	f, err := sfs.Open("/messages/42")
	require.NoError(t, err)
	defer f.Close()

	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "<html>mingle</html>", string(content))
}

func TestNewStaticFSRequiresFallback(t *testing.T) {
	_, err := NewStaticFS(fstest.MapFS{
		"assets/app.js": {Data: []byte("console.log('mingle')")},
	}, "index.html", nil)
	require.Error(t, err)
}

func TestEtagMiddleware(t *testing.T) {
	sfs := staticFixture(t)
	server := httptest.NewServer(sfs.EtagMiddleware()(http.FileServer(sfs)))
	defer server.Close()

	res, err := http.Get(server.URL + "/assets/app.js")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	etag := res.Header.Get("Etag")
	assert.NotEmpty(t, etag)
	assert.Equal(t, "public, max-age=31536000, immutable", res.Header.Get("Cache-Control"))

	req, err := http.NewRequest(http.MethodGet, server.URL+"/assets/app.js", nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", etag)
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotModified, res.StatusCode)
}

func TestEtagMiddlewareUnknownPathUsesFallback(t *testing.T) {
	sfs := staticFixture(t)
	server := httptest.NewServer(sfs.EtagMiddleware()(http.FileServer(sfs)))
	defer server.Close()

	res, err := http.Get(server.URL + "/messages/42")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, sfs.etags["index.html"], res.Header.Get("Etag"))
	assert.Equal(t, "no-cache", res.Header.Get("Cache-Control"))
}
