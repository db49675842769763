package ingestion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const postingHTML = `<!DOCTYPE html>
<html>
<body>
<nav>Nav</nav>
<main>
<h1>Machine Learning Engineer</h1>
<p>We need   5+ years of Python and TensorFlow.</p>
</main>
<footer>Footer</footer>
</body>
</html>`

func serveHTML(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFromURL_InvalidURL(t *testing.T) {
	tests := []struct {
		name   string
		urlStr string
	}{
		{"empty URL", ""},
		{"malformed URL", "not-a-url"},
		{"no scheme", "example.com"},
		{"no host", "http://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := FromURL(context.Background(), tt.urlStr, URLOptions{})
			assert.ErrorIs(t, err, ErrHTTPRequestFailed)
		})
	}
}

func TestFromURL_Success(t *testing.T) {
	server := serveHTML(t, http.StatusOK, postingHTML)

	text, metadata, err := FromURL(context.Background(), server.URL, URLOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Machine Learning Engineer\nWe need 5+ years of Python and TensorFlow.", text)
	assert.NotContains(t, text, "Nav")
	assert.NotContains(t, text, "Footer")
	require.NotNil(t, metadata)
	assert.Equal(t, server.URL, metadata.URL)
	assert.Equal(t, "unknown", metadata.Platform)
	assert.Equal(t, ContentHash(text), metadata.Hash)
}

func TestFromURL_HTTPError(t *testing.T) {
	server := serveHTML(t, http.StatusNotFound, "")

	_, _, err := FromURL(context.Background(), server.URL, URLOptions{})
	assert.ErrorIs(t, err, ErrHTTPRequestFailed)
}

func TestFromURL_EmptyPage(t *testing.T) {
	server := serveHTML(t, http.StatusOK, "<html><body><script>app()</script></body></html>")

	_, _, err := FromURL(context.Background(), server.URL, URLOptions{})
	assert.ErrorIs(t, err, ErrContentExtractionFailed)
}

func TestFromURL_BrowserFallback(t *testing.T) {
	server := serveHTML(t, http.StatusOK, `<html><body><div id="root">Loading</div></body></html>`)

	long := strings.Repeat("Build data pipelines in Go. ", 30)
	var rendered string
	render := func(_ context.Context, url string, timeout time.Duration, _ *zap.Logger) (string, error) {
		rendered = url
		assert.Equal(t, 5*time.Second, timeout)
		return "<html><body><main><p>" + long + "</p></main></body></html>", nil
	}

	text, _, err := FromURL(context.Background(), server.URL, URLOptions{
		UseBrowser:    true,
		RenderTimeout: 5 * time.Second,
		Render:        render,
	})
	require.NoError(t, err)
	assert.Equal(t, server.URL, rendered)
	assert.Equal(t, strings.TrimSpace(long), text)
}

func TestFromURL_BrowserFailureKeepsHTTPContent(t *testing.T) {
	server := serveHTML(t, http.StatusOK, `<html><body><main>Short posting</main></body></html>`)

	render := func(context.Context, string, time.Duration, *zap.Logger) (string, error) {
		return "", errors.New("chrome not installed")
	}

	text, _, err := FromURL(context.Background(), server.URL, URLOptions{UseBrowser: true, Render: render})
	require.NoError(t, err)
	assert.Equal(t, "Short posting", text)
}

func TestFromURL_BrowserDisabled(t *testing.T) {
	server := serveHTML(t, http.StatusOK, `<html><body><main>Short posting</main></body></html>`)

	called := false
	render := func(context.Context, string, time.Duration, *zap.Logger) (string, error) {
		called = true
		return "", nil
	}

	_, _, err := FromURL(context.Background(), server.URL, URLOptions{Render: render})
	require.NoError(t, err)
	assert.False(t, called)
}
