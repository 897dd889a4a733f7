package notebooks

import (
	"time"

	"github.com/google/uuid"
)

// SourceType tags where a source's text came from.
type SourceType string

const (
	SourceText    SourceType = "text"
	SourceYouTube SourceType = "youtube"
	SourceURL     SourceType = "url"
)

// Valid reports whether t is one of the known source types.
func (t SourceType) Valid() bool {
	switch t {
	case SourceText, SourceYouTube, SourceURL:
		return true
	}
	return false
}

// Metadata holds auxiliary source attributes such as the originating URL or
// the video identifier.
type Metadata map[string]string

// Notebook is a named collection of sources plus at most one infographic.
type Notebook struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Created     time.Time    `json:"created"`
	Updated     time.Time    `json:"updated"`
	Sources     []Source     `json:"sources"`
	Infographic *Infographic `json:"infographic"`
}

// Source is one unit of input text. Sources keep insertion order.
type Source struct {
	ID       uuid.UUID  `json:"id"`
	Type     SourceType `json:"type"`
	Content  string     `json:"content"`
	Metadata Metadata   `json:"metadata"`
	Added    time.Time  `json:"added"`
}

// Infographic is the rendered artifact for a notebook.
type Infographic struct {
	// Data is a PNG encoded as a "data:image/png;base64," URL.
	Data      string    `json:"data"`
	Generated time.Time `json:"generated"`
}

// Draft carries the caller-supplied fields for a new notebook.
type Draft struct {
	Name string
}

// SourceInput carries the caller-supplied fields for a new source.
type SourceInput struct {
	Type     SourceType
	Content  string
	Metadata Metadata
}

// SourceIndex returns the position of the source with the given id, or -1.
func (n *Notebook) SourceIndex(id uuid.UUID) int {
	for i, s := range n.Sources {
		if s.ID == id {
			return i
		}
	}
	return -1
}
