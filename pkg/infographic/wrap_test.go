package infographic

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

// monoMeasurer gives every rune the same width.
type monoMeasurer float64

func (m monoMeasurer) MeasureString(s string) (float64, float64) {
	return float64(utf8.RuneCountInString(s)) * float64(m), float64(m)
}

func TestWrap_Greedy(t *testing.T) {
	m := monoMeasurer(10)

	got := Wrap(m, "the quick brown fox jumps over the lazy dog", 100, 0)
	assert.Equal(t, []string{"the quick", "brown fox", "jumps over", "the lazy", "dog"}, got)
}

func TestWrap_MaxLinesDropsRest(t *testing.T) {
	m := monoMeasurer(10)

	got := Wrap(m, "aaa bbb ccc ddd eee fff", 30, 4)
	assert.Equal(t, []string{"aaa", "bbb", "ccc", "ddd"}, got)
}

func TestWrap_BreaksLongWord(t *testing.T) {
	m := monoMeasurer(10)

	got := Wrap(m, "go supercalifragilistic ok", 50, 0)
	assert.Equal(t, []string{"go", "super", "calif", "ragil", "istic", "ok"}, got)
}

func TestWrap_LongWordRespectsMaxLines(t *testing.T) {
	m := monoMeasurer(10)

	got := Wrap(m, strings.Repeat("x", 100), 50, 2)
	assert.Equal(t, []string{"xxxxx", "xxxxx"}, got)
}

func TestWrap_Empty(t *testing.T) {
	assert.Empty(t, Wrap(monoMeasurer(10), "   ", 100, 4))
}

func TestWrap_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	words := gen.SliceOf(gen.AlphaString())

	properties.Property("no line is wider than the budget", prop.ForAll(
		func(ws []string, budget int, maxLines int) bool {
			m := monoMeasurer(7)
			lines := Wrap(m, strings.Join(ws, " "), float64(budget), maxLines)
			if len(lines) > maxLines {
				return false
			}
			for _, line := range lines {
				if w, _ := m.MeasureString(line); w > float64(budget) {
					return false
				}
			}
			return true
		},
		words,
		gen.IntRange(7, 400),
		gen.IntRange(1, 6),
	))

	properties.Property("without a line limit no text is lost", prop.ForAll(
		func(ws []string, budget int) bool {
			text := strings.Join(ws, " ")
			lines := Wrap(monoMeasurer(7), text, float64(budget), 0)
			return strings.Join(strings.Fields(strings.Join(lines, "")), "") ==
				strings.Join(strings.Fields(text), "")
		},
		words,
		gen.IntRange(7, 400),
	))

	properties.TestingRun(t)
}
