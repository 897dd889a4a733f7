package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u, nil
}

// HTTPPageFetcher downloads a page and returns its visible text.
type HTTPPageFetcher struct {
	opts Options
}

func NewHTTPPageFetcher(opts Options) *HTTPPageFetcher {
	return &HTTPPageFetcher{opts: opts}
}

func (f *HTTPPageFetcher) FetchPage(ctx context.Context, rawURL string) (string, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrContent, err)
	}

	log := f.opts.logger()
	body, err := get(ctx, f.opts.client(), f.opts.UserAgent, u.String())
	if err != nil {
		log.Debug("page request failed", zap.String("url", u.String()), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrContent, err)
	}

	text, err := ExtractText(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrContent, err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: no readable text at %s", ErrContent, u.String())
	}

	log.Debug("page fetched", zap.String("url", u.String()), zap.Int("chars", len(text)))
	return text, nil
}

var skippedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Nav:      true,
	atom.Header:   true,
	atom.Footer:   true,
	atom.Template: true,
	atom.Iframe:   true,
	atom.Svg:      true,
	atom.Head:     true,
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Section: true, atom.Article: true, atom.Main: true, atom.Tr: true,
	atom.Blockquote: true, atom.Pre: true, atom.Title: true,
}

// ExtractText returns the human-visible text of an HTML document, one block
// per line with whitespace collapsed.
func ExtractText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			sb.WriteByte('\n')
		}
	}
	walk(doc)

	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
