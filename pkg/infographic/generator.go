package infographic

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrEmptyContent is returned when there is no text to summarize.
var ErrEmptyContent = errors.New("no content to generate an infographic from")

// Result is everything produced for one infographic.
type Result struct {
	Statements []string
	Layout     Layout
	PNG        []byte
	DataURL    string
}

// Generator runs extraction, layout, rendering and encoding.
type Generator struct {
	renderer *Renderer
	log      *zap.Logger
	now      func() time.Time
}

// NewGenerator builds a Generator. A nil log discards output.
func NewGenerator(log *zap.Logger) (*Generator, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		renderer: renderer,
		log:      log,
		now:      time.Now,
	}, nil
}

// Build produces the infographic for text. Text without any qualifying
// statement still yields an image with the title and footer only.
func (g *Generator) Build(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContent
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	statements := Extract(text)
	layout := Plan(g.renderer.TextMeasurer(), statements, g.now())
	img := g.renderer.Render(layout)

	pngData, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}

	g.log.Debug("infographic built",
		zap.Int("statements", len(statements)),
		zap.Int("pngBytes", len(pngData)))

	return &Result{
		Statements: statements,
		Layout:     layout,
		PNG:        pngData,
		DataURL:    DataURL(pngData),
	}, nil
}

// Generate returns the infographic for text as a PNG data URL.
func (g *Generator) Generate(ctx context.Context, text string) (string, error) {
	res, err := g.Build(ctx, text)
	if err != nil {
		return "", err
	}
	return res.DataURL, nil
}
