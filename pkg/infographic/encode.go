package infographic

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
)

// DataURLPrefix starts every encoded infographic.
const DataURLPrefix = "data:image/png;base64,"

// ErrInvalidDataURL is returned when a stored infographic cannot be decoded.
var ErrInvalidDataURL = errors.New("invalid infographic data url")

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL wraps PNG bytes in a base64 data URL.
func DataURL(pngData []byte) string {
	return DataURLPrefix + base64.StdEncoding.EncodeToString(pngData)
}

// DecodeDataURL returns the PNG bytes held by a data URL built by DataURL.
func DecodeDataURL(s string) ([]byte, error) {
	payload, ok := strings.CutPrefix(s, DataURLPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidDataURL, DataURLPrefix)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return data, nil
}
