package infographic

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	gradientTop    = color.NRGBA{R: 0x63, G: 0x66, B: 0xf1, A: 0xff}
	gradientBottom = color.NRGBA{R: 0x8b, G: 0x5c, B: 0xf6, A: 0xff}
	badgeColor     = color.NRGBA{R: 0x63, G: 0x66, B: 0xf1, A: 0xff}
	textColor      = color.NRGBA{R: 0x1e, G: 0x29, B: 0x3b, A: 0xff}
)

const (
	shadowOffsetY = 5
	shadowSpread  = 10
	shadowAlpha   = 0.2
)

// Renderer draws layouts onto an RGBA canvas. Faces are created per render,
// so a Renderer may be shared between goroutines.
type Renderer struct {
	regular *truetype.Font
	bold    *truetype.Font
}

// NewRenderer parses the embedded Go fonts.
func NewRenderer() (*Renderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &Renderer{regular: regular, bold: bold}, nil
}

func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size, Hinting: font.HintingFull})
}

// TextMeasurer returns a Measurer using the card text font.
func (r *Renderer) TextMeasurer() Measurer {
	dc := gg.NewContext(1, 1)
	dc.SetFontFace(face(r.regular, TextSize))
	return dc
}

// Render draws layout and returns the finished image.
func (r *Renderer) Render(layout Layout) image.Image {
	dc := gg.NewContext(Width, Height)

	bg := gg.NewLinearGradient(0, 0, 0, Height)
	bg.AddColorStop(0, gradientTop)
	bg.AddColorStop(1, gradientBottom)
	dc.SetFillStyle(bg)
	dc.DrawRectangle(0, 0, Width, Height)
	dc.Fill()

	dc.SetColor(color.White)
	dc.SetFontFace(face(r.bold, TitleSize))
	dc.DrawStringAnchored(layout.Title, Width/2, TitleBaseline, 0.5, 0)

	badgeFace := face(r.bold, BadgeTextSize)
	textFace := face(r.regular, TextSize)
	for _, card := range layout.Cards {
		drawShadow(dc, card)

		dc.SetRGBA(1, 1, 1, 0.95)
		dc.DrawRectangle(card.X, card.Y, card.Width, card.Height)
		dc.Fill()

		dc.SetColor(badgeColor)
		dc.DrawCircle(card.BadgeX, card.BadgeY, BadgeRadius)
		dc.Fill()

		dc.SetColor(color.White)
		dc.SetFontFace(badgeFace)
		dc.DrawStringAnchored(fmt.Sprint(card.Index), card.BadgeX, card.BadgeTextY, 0.5, 0)

		dc.SetColor(textColor)
		dc.SetFontFace(textFace)
		for _, line := range card.Lines {
			dc.DrawString(line.Text, line.X, line.Y)
		}
	}

	dc.SetRGBA(1, 1, 1, 0.8)
	dc.SetFontFace(face(r.regular, FooterSize))
	baselines := []float64{FooterBaseline, DateBaseline}
	for i, text := range layout.Footer {
		if i >= len(baselines) {
			break
		}
		dc.DrawStringAnchored(text, Width/2, baselines[i], 0.5, 0)
	}

	return dc.Image()
}

// drawShadow approximates a blurred drop shadow with stacked translucent
// rounded rectangles that grow outwards.
func drawShadow(dc *gg.Context, card Card) {
	const steps = shadowSpread / 2
	for i := steps; i > 0; i-- {
		grow := float64(i * 2)
		dc.SetRGBA(0, 0, 0, shadowAlpha/steps)
		dc.DrawRoundedRectangle(
			card.X-grow/2,
			card.Y+shadowOffsetY-grow/2,
			card.Width+grow,
			card.Height+grow,
			grow/2,
		)
		dc.Fill()
	}
}
