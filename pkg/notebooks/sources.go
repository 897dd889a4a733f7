package notebooks

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unowned-ai/infograph/pkg/fetch"
)

// Metadata keys recorded on fetched sources.
const (
	MetaURL     = "url"
	MetaVideoID = "videoId"
)

// AddSource appends a new source to the notebook and persists it.
func (m *Manager) AddSource(ctx context.Context, id int64, in SourceInput) (Notebook, error) {
	if !in.Type.Valid() {
		return Notebook{}, newValidationError("type", fmt.Sprintf("unknown source type %q", in.Type))
	}
	if strings.TrimSpace(in.Content) == "" {
		return Notebook{}, newValidationError("content", "must not be empty")
	}

	md := make(Metadata, len(in.Metadata))
	for k, v := range in.Metadata {
		md[k] = v
	}

	var added Source
	nb, err := m.mutate(ctx, id, func(nb *Notebook) error {
		added = Source{
			ID:       m.newID(),
			Type:     in.Type,
			Content:  in.Content,
			Metadata: md,
			Added:    m.now(),
		}
		nb.Sources = append(nb.Sources, added)
		return nil
	})
	if err != nil {
		return Notebook{}, err
	}

	m.log.Info("source added",
		zap.Int64("notebook", id),
		zap.String("source", added.ID.String()),
		zap.String("type", string(added.Type)))
	return nb, nil
}

// RemoveSource drops the source with sourceID. An unknown source id leaves
// the sources unchanged but the notebook is still persisted.
func (m *Manager) RemoveSource(ctx context.Context, id int64, sourceID uuid.UUID) (Notebook, error) {
	removed := false
	nb, err := m.mutate(ctx, id, func(nb *Notebook) error {
		kept := nb.Sources[:0]
		for _, s := range nb.Sources {
			if s.ID == sourceID {
				removed = true
				continue
			}
			kept = append(kept, s)
		}
		nb.Sources = kept
		return nil
	})
	if err != nil {
		return Notebook{}, err
	}

	if removed {
		m.log.Info("source removed", zap.Int64("notebook", id), zap.String("source", sourceID.String()))
	} else {
		m.log.Debug("source not present", zap.Int64("notebook", id), zap.String("source", sourceID.String()))
	}
	return nb, nil
}

// AddYouTubeSource resolves the video id in ref, fetches its transcript and
// stores it as a youtube source.
func (m *Manager) AddYouTubeSource(ctx context.Context, id int64, ref string, f fetch.TranscriptFetcher) (Notebook, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Notebook{}, newValidationError("url", "must not be empty")
	}
	videoID, ok := fetch.ParseYouTubeID(ref)
	if !ok {
		return Notebook{}, newValidationError("url", "not a YouTube video URL or id")
	}

	if _, err := m.store.Get(ctx, id); err != nil {
		return Notebook{}, err
	}

	transcript, err := f.FetchTranscript(ctx, videoID)
	if err != nil {
		return Notebook{}, err
	}

	return m.AddSource(ctx, id, SourceInput{
		Type:     SourceYouTube,
		Content:  transcript,
		Metadata: Metadata{MetaVideoID: videoID, MetaURL: ref},
	})
}

// AddURLSource fetches the page at rawURL and stores its text as a url source.
func (m *Manager) AddURLSource(ctx context.Context, id int64, rawURL string, f fetch.PageFetcher) (Notebook, error) {
	u, err := fetch.ValidateURL(rawURL)
	if err != nil {
		return Notebook{}, newValidationError("url", err.Error())
	}

	if _, err := m.store.Get(ctx, id); err != nil {
		return Notebook{}, err
	}

	text, err := f.FetchPage(ctx, u.String())
	if err != nil {
		return Notebook{}, err
	}

	return m.AddSource(ctx, id, SourceInput{
		Type:     SourceURL,
		Content:  text,
		Metadata: Metadata{MetaURL: u.String()},
	})
}
