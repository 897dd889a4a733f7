// Package fetch retrieves source text from the network: video transcripts
// and the visible text of web pages.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrTranscript is returned when a video transcript cannot be retrieved.
	ErrTranscript = errors.New("could not fetch transcript")
	// ErrContent is returned when a page's content cannot be retrieved.
	ErrContent = errors.New("could not fetch content")
	// ErrInvalidURL is returned for input that is not a usable http(s) URL or video reference.
	ErrInvalidURL = errors.New("invalid url")
)

// MaxBodyBytes caps how much of a response body is read.
const MaxBodyBytes = 5 << 20

// TranscriptFetcher returns the transcript text of a video.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, videoID string) (string, error)
}

// PageFetcher returns the readable text of a web page.
type PageFetcher interface {
	FetchPage(ctx context.Context, rawURL string) (string, error)
}

// Options configures the HTTP fetchers.
type Options struct {
	// Client is used for every request. Nil builds one from Timeout.
	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
	Logger    *zap.Logger
}

func (o Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return &http.Client{Timeout: o.Timeout}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// get issues a GET and returns the capped body of a 2xx response.
func get(ctx context.Context, client *http.Client, userAgent, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
}
