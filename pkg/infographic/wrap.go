package infographic

import "strings"

// Measurer reports the rendered size of a string in the current font.
// *gg.Context satisfies it.
type Measurer interface {
	MeasureString(s string) (w, h float64)
}

// Wrap breaks text into lines no wider than maxWidth, filling each line
// greedily word by word. A word that alone exceeds maxWidth is split between
// runes. At most maxLines lines are returned (maxLines <= 0 means no limit);
// text past the limit is dropped.
func Wrap(m Measurer, text string, maxWidth float64, maxLines int) []string {
	var lines []string
	full := func() bool { return maxLines > 0 && len(lines) >= maxLines }

	line := ""
	for _, word := range strings.Fields(text) {
		if full() {
			break
		}

		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if width(m, candidate) <= maxWidth {
			line = candidate
			continue
		}

		if line != "" {
			lines = append(lines, line)
			line = ""
			if full() {
				break
			}
		}
		if width(m, word) <= maxWidth {
			line = word
			continue
		}

		pieces := breakWord(m, word, maxWidth)
		for _, p := range pieces[:len(pieces)-1] {
			if full() {
				break
			}
			lines = append(lines, p)
		}
		line = pieces[len(pieces)-1]
	}

	if line != "" && !full() {
		lines = append(lines, line)
	}
	return lines
}

// breakWord splits word into the fewest rune runs that each fit maxWidth.
// A single rune wider than maxWidth still gets its own piece.
func breakWord(m Measurer, word string, maxWidth float64) []string {
	var pieces []string
	var cur []rune
	for _, r := range word {
		next := append(cur, r)
		if len(cur) > 0 && width(m, string(next)) > maxWidth {
			pieces = append(pieces, string(cur))
			cur = []rune{r}
			continue
		}
		cur = next
	}
	return append(pieces, string(cur))
}

func width(m Measurer, s string) float64 {
	w, _ := m.MeasureString(s)
	return w
}
