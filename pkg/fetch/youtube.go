package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	stdhtml "html"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	youtubeURLPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&?/]+)`)
	youtubeIDPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ParseYouTubeID extracts the video id from a watch, short or embed URL, or
// accepts a bare 11 character id.
func ParseYouTubeID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if m := youtubeURLPattern.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	if youtubeIDPattern.MatchString(s) {
		return s, true
	}
	return "", false
}

// HTTPTranscriptFetcher reads captions from a timedtext style endpoint that
// answers `GET <endpoint>?v=<id>&lang=<lang>` with
// <transcript><text start=".." dur="..">...</text></transcript>.
type HTTPTranscriptFetcher struct {
	opts     Options
	endpoint string
	lang     string
}

// NewHTTPTranscriptFetcher returns a fetcher for endpoint in language lang.
func NewHTTPTranscriptFetcher(endpoint, lang string, opts Options) *HTTPTranscriptFetcher {
	if lang == "" {
		lang = "en"
	}
	return &HTTPTranscriptFetcher{opts: opts, endpoint: endpoint, lang: lang}
}

type timedText struct {
	XMLName xml.Name `xml:"transcript"`
	Lines   []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

func (f *HTTPTranscriptFetcher) FetchTranscript(ctx context.Context, videoID string) (string, error) {
	if !youtubeIDPattern.MatchString(videoID) {
		return "", fmt.Errorf("%w: %w: video id %q", ErrTranscript, ErrInvalidURL, videoID)
	}

	u, err := url.Parse(f.endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscript, err)
	}
	q := u.Query()
	q.Set("v", videoID)
	q.Set("lang", f.lang)
	u.RawQuery = q.Encode()

	log := f.opts.logger()
	body, err := get(ctx, f.opts.client(), f.opts.UserAgent, u.String())
	if err != nil {
		log.Debug("transcript request failed", zap.String("videoId", videoID), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrTranscript, err)
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrTranscript, err)
	}

	lines := make([]string, 0, len(tt.Lines))
	for _, l := range tt.Lines {
		text := strings.Join(strings.Fields(stdhtml.UnescapeString(l.Text)), " ")
		if text != "" {
			lines = append(lines, text)
		}
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("%w: no captions for %s", ErrTranscript, videoID)
	}

	log.Debug("transcript fetched", zap.String("videoId", videoID), zap.Int("lines", len(lines)))
	return strings.Join(lines, " "), nil
}
