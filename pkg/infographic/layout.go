package infographic

import "time"

// Canvas geometry, in pixels.
const (
	Width  = 800
	Height = 1000

	TitleText     = "Key Insights"
	TitleBaseline = 80
	TitleSize     = 48

	CardX      = 50
	CardWidth  = Width - 2*CardX
	CardHeight = 140
	CardGap    = 20
	FirstCardY = 150

	BadgeOffsetX   = 40
	BadgeOffsetY   = 40
	BadgeRadius    = 25
	BadgeTextDrop  = 8
	BadgeTextSize  = 24
	TextX          = 130
	TextMaxWidth   = Width - 180
	TextFirstDrop  = 40
	TextLineHeight = 25
	TextMaxLines   = 4
	TextSize       = 18

	FooterText     = "Generated by InfographLM"
	FooterSize     = 16
	FooterBaseline = Height - 30
	DateBaseline   = Height - 10
)

// DateLayout formats the footer date.
const DateLayout = "Jan 2, 2006"

// Line is one line of card text with its left baseline origin.
type Line struct {
	Text string
	X, Y float64
}

// Card is a numbered statement panel.
type Card struct {
	// Index is 1-based and drawn in the badge.
	Index               int
	X, Y, Width, Height float64
	BadgeX, BadgeY      float64
	BadgeTextY          float64
	Lines               []Line
}

// Layout is the full drawing plan for one infographic.
type Layout struct {
	Title  string
	Cards  []Card
	Footer []string
}

// Plan positions statements as cards. m must measure with the card text
// font. Statements past MaxStatements are ignored.
func Plan(m Measurer, statements []string, date time.Time) Layout {
	if len(statements) > MaxStatements {
		statements = statements[:MaxStatements]
	}

	layout := Layout{
		Title:  TitleText,
		Cards:  make([]Card, 0, len(statements)),
		Footer: []string{FooterText, date.Format(DateLayout)},
	}

	for i, statement := range statements {
		y := float64(FirstCardY + i*(CardHeight+CardGap))
		card := Card{
			Index:      i + 1,
			X:          CardX,
			Y:          y,
			Width:      CardWidth,
			Height:     CardHeight,
			BadgeX:     CardX + BadgeOffsetX,
			BadgeY:     y + BadgeOffsetY,
			BadgeTextY: y + BadgeOffsetY + BadgeTextDrop,
		}
		for n, text := range Wrap(m, statement, TextMaxWidth, TextMaxLines) {
			card.Lines = append(card.Lines, Line{
				Text: text,
				X:    TextX,
				Y:    y + TextFirstDrop + float64(n*TextLineHeight),
			})
		}
		layout.Cards = append(layout.Cards, card)
	}
	return layout
}
