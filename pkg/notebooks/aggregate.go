package notebooks

import "strings"

// SourceSeparator joins source contents in the aggregated text.
const SourceSeparator = "\n\n"

// Aggregate concatenates the notebook's source contents in order.
func Aggregate(nb Notebook) (string, error) {
	if len(nb.Sources) == 0 {
		return "", ErrNoSources
	}

	parts := make([]string, len(nb.Sources))
	for i, s := range nb.Sources {
		parts[i] = s.Content
	}
	return strings.Join(parts, SourceSeparator), nil
}
