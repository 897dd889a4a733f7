package fetch

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
)

func TestParseYouTubeID(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"  dQw4w9WgXcQ  ", "dQw4w9WgXcQ", true},
		{"dQw4w9WgXc", "", false},
		{"https://example.com/watch?v=x", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseYouTubeID(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestValidateURL(t *testing.T) {
	u, err := ValidateURL(" https://example.com/a?b=c ")
	require.NoError(t, err)
	assert.Equal(t, "example.com", u.Host)

	for _, bad := range []string{"", "ftp://example.com", "example.com/page", "https://", "::"} {
		_, err := ValidateURL(bad)
		assert.ErrorIs(t, err, ErrInvalidURL, bad)
	}
}

func TestHTTPTranscriptFetcher(t *testing.T) {
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="utf-8" ?><transcript>` +
			`<text start="0" dur="1.5">Hello   there</text>` +
			`<text start="1.5" dur="2">it&amp;#39;s a   test</text>` +
			`<text start="3.5" dur="1"> </text>` +
			`</transcript>`))
	}))
	defer srv.Close()

	f := NewHTTPTranscriptFetcher(srv.URL+"/api/timedtext", "de", Options{UserAgent: "infograph-test", Timeout: time.Second})
	text, err := f.FetchTranscript(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "Hello there it's a test", text)
	assert.Contains(t, gotQuery, "v=dQw4w9WgXcQ")
	assert.Contains(t, gotQuery, "lang=de")
	assert.Equal(t, "infograph-test", gotUA)
}

func TestHTTPTranscriptFetcher_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("v") {
		case "missing0000":
			http.NotFound(w, r)
		case "emptyemptyx":
			_, _ = w.Write([]byte(`<transcript></transcript>`))
		default:
			_, _ = w.Write([]byte(`not xml`))
		}
	}))
	defer srv.Close()

	f := NewHTTPTranscriptFetcher(srv.URL, "", Options{Timeout: time.Second})

	for _, id := range []string{"missing0000", "emptyemptyx", "garbagexxxx", "bad id"} {
		_, err := f.FetchTranscript(context.Background(), id)
		assert.ErrorIs(t, err, ErrTranscript, id)
	}
}

func TestHTTPPageFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusGone)
			return
		}
		if r.URL.Path == "/blank" {
			_, _ = w.Write([]byte(`<html><body><script>var x = 1;</script></body></html>`))
			return
		}
		_, _ = w.Write([]byte(`<!doctype html>
<html><head><title>Ignored</title><style>body{color:red}</style></head>
<body>
<header>Site header</header>
<nav><a href="/">Home</a></nav>
<main>
<h1>Rivers  of   Europe</h1>
<p>The Danube flows through ten countries.</p>
<script>alert("no")</script>
<noscript>Enable JS</noscript>
<p>The Rhine starts in the Alps.</p>
</main>
<footer>Copyright</footer>
</body></html>`))
	}))
	defer srv.Close()

	f := NewHTTPPageFetcher(Options{Timeout: time.Second})

	text, err := f.FetchPage(context.Background(), srv.URL+"/article")
	require.NoError(t, err)
	assert.Equal(t, "Rivers of Europe\nThe Danube flows through ten countries.\nThe Rhine starts in the Alps.", text)

	_, err = f.FetchPage(context.Background(), srv.URL+"/gone")
	assert.ErrorIs(t, err, ErrContent)

	_, err = f.FetchPage(context.Background(), srv.URL+"/blank")
	assert.ErrorIs(t, err, ErrContent)

	_, err = f.FetchPage(context.Background(), "mailto:someone@example.com")
	assert.ErrorIs(t, err, ErrContent)
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestHTTPPageFetcher_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPPageFetcher(Options{}).FetchPage(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrContent))
}

func TestExtractText_SkipsNonVisible(t *testing.T) {
	text, err := ExtractText(strings.NewReader(`<div>one<br>two</div><svg><text>drawn</text></svg><ul><li>three</li></ul>`))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree", text)
}
