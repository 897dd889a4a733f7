package infographic

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// ExportFilename names a downloaded infographic:
// infographic-<notebook name>-<unix milliseconds>.png. Characters that are
// unsafe in file names become dashes.
func ExportFilename(notebookName string, at time.Time) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, strings.TrimSpace(notebookName))
	if safe == "" {
		safe = "notebook"
	}
	return fmt.Sprintf("infographic-%s-%d.png", safe, at.UnixMilli())
}

// WriteFile decodes dataURL and writes the PNG into dir under
// ExportFilename. It returns the written path.
func WriteFile(dir, notebookName, dataURL string, at time.Time) (string, error) {
	pngData, err := DecodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	path := filepath.Join(dir, ExportFilename(notebookName, at))
	if err := os.WriteFile(path, pngData, 0644); err != nil {
		return "", fmt.Errorf("write infographic: %w", err)
	}
	return path, nil
}
