package agent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!doctype html>
<html>
<head>
  <title>  平价面霜测评 </title>
  <meta name="description" content="学生党 也能 入手">
  <style>body { color: red; }</style>
</head>
<body>
  <script>var tracking = 1;</script>
  <h1>第一款</h1>
  <p>质地   轻薄，
     吸收快。</p>
</body>
</html>`

func TestHTTPFetcherExtractsReadableText(t *testing.T) {
	var userAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(samplePage)) //nolint:errcheck
	}))
	defer server.Close()

	text, err := NewHTTPFetcher().Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, defaultUserAgent, userAgent)

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "平价面霜测评", lines[0])
	assert.Equal(t, "学生党 也能 入手", lines[1])
	assert.Contains(t, lines[2], "质地 轻薄， 吸收快。")
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "color: red")
}

func TestHTTPFetcherRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewHTTPFetcher().Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestHTTPFetcherTruncates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html><body>" + strings.Repeat("字", 50) + "</body></html>")) //nolint:errcheck
	}))
	defer server.Close()

	f := NewHTTPFetcher()
	f.maxRunes = 10

	text, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("字", 10), text)
}
