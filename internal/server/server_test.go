package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DjordjeVuckovic/webbench/internal/harness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *harness.ResultChannel) {
	t.Helper()
	assets := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(assets, "test.html"), []byte("<html>bench</html>"), 0644))

	channel := harness.NewResultChannel()
	return New(channel, Config{Listen: "127.0.0.1:0", AssetsDir: assets}), channel
}

func postResults(srv *Server, userAgent, payload string) *httptest.ResponseRecorder {
	form := url.Values{}
	if payload != "" {
		form.Set("results", payload)
	}
	req := httptest.NewRequest(http.MethodPost, "/results", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)
	rec := httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, req)
	return rec
}

func TestPostback(t *testing.T) {
	t.Run("delivers into the channel", func(t *testing.T) {
		srv, channel := newTestServer(t)

		rec := postResults(srv, "Mozilla/5.0 Firefox/102.0", `[{"page":"a","time_ms":120}]`)
		require.Equal(t, http.StatusOK, rec.Code)

		pb, ok := channel.Peek()
		require.True(t, ok)
		assert.Equal(t, "Mozilla/5.0 Firefox/102.0", pb.UserAgent())
		require.Len(t, pb.Results, 1)
		assert.Equal(t, 120.0, pb.Results[0]["time_ms"])
	})

	t.Run("missing results field", func(t *testing.T) {
		srv, channel := newTestServer(t)

		rec := postResults(srv, "ua", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		_, ok := channel.Peek()
		assert.False(t, ok)
	})

	t.Run("malformed payload", func(t *testing.T) {
		srv, channel := newTestServer(t)

		rec := postResults(srv, "ua", `not json`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		_, ok := channel.Peek()
		assert.False(t, ok)
	})
}

func TestStaticAssets(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/test.html", nil)
	rec := httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bench")
}

func TestStartAndShutdown(t *testing.T) {
	srv, channel := newTestServer(t)
	require.NoError(t, srv.Start())
	defer func() { require.NoError(t, srv.Shutdown()) }()

	base := srv.BaseURL()
	assert.True(t, strings.HasPrefix(base, "http://127.0.0.1:"))

	form := url.Values{}
	form.Set("results", `[{"page":"a","time_ms":1}]`)
	resp, err := http.PostForm(base+"results", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, ok := channel.Peek()
	assert.True(t, ok)
}
