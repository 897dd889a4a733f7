// Package notebooks owns the notebook record model: the persistent store,
// the manager that applies every mutation to it, and the aggregation of a
// notebook's sources into the text an infographic is generated from.
package notebooks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unowned-ai/infograph/pkg/writequeue"
)

// DefaultNameDateLayout formats the date in a generated notebook name.
const DefaultNameDateLayout = "Jan 2, 2006"

// InfographicGenerator turns aggregated notebook text into an image data URL.
type InfographicGenerator interface {
	Generate(ctx context.Context, text string) (string, error)
}

// Manager applies notebook operations on top of a Store. Mutations of one
// notebook are serialized through a write queue keyed by notebook id.
type Manager struct {
	store Store
	queue *writequeue.Manager
	log   *zap.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

// NewManager builds a Manager. A nil queue gets a default one owned by the
// Manager and a nil log discards output.
func NewManager(store Store, queue *writequeue.Manager, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if queue == nil {
		queue = writequeue.New(nil, log.Named("writequeue"))
	}
	return &Manager{
		store: store,
		queue: queue,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.New,
	}
}

// Close drains pending mutations and stops the write queue.
func (m *Manager) Close(ctx context.Context) error {
	return m.queue.Shutdown(ctx)
}

// DefaultName is the name given to a notebook created without one.
func DefaultName(t time.Time) string {
	return "Notebook " + t.Format(DefaultNameDateLayout)
}

// CreateNotebook persists a new empty notebook. A blank name is replaced by
// DefaultName.
func (m *Manager) CreateNotebook(ctx context.Context, name string) (Notebook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName(m.now().Local())
	}

	nb, err := m.store.Create(ctx, Draft{Name: name})
	if err != nil {
		return Notebook{}, err
	}

	m.log.Info("notebook created", zap.Int64("id", nb.ID), zap.String("name", nb.Name))
	return nb, nil
}

// GetNotebook returns the notebook with id or ErrNotFound.
func (m *Manager) GetNotebook(ctx context.Context, id int64) (Notebook, error) {
	return m.store.Get(ctx, id)
}

// ListNotebooks returns every notebook, most recently updated first.
func (m *Manager) ListNotebooks(ctx context.Context) ([]Notebook, error) {
	all, err := m.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Updated.Equal(all[j].Updated) {
			return all[i].ID > all[j].ID
		}
		return all[i].Updated.After(all[j].Updated)
	})
	return all, nil
}

// RenameNotebook replaces the notebook's name.
func (m *Manager) RenameNotebook(ctx context.Context, id int64, name string) (Notebook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Notebook{}, newValidationError("name", "must not be empty")
	}

	return m.mutate(ctx, id, func(nb *Notebook) error {
		nb.Name = name
		return nil
	})
}

// DeleteNotebook removes the notebook, its sources and its infographic.
func (m *Manager) DeleteNotebook(ctx context.Context, id int64) error {
	err := m.queue.Execute(ctx, id, func() error {
		return m.store.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	m.log.Info("notebook deleted", zap.Int64("id", id))
	return nil
}

// SaveInfographic attaches data as the notebook's infographic, replacing any
// previous one.
func (m *Manager) SaveInfographic(ctx context.Context, id int64, data string) (Notebook, error) {
	if data == "" {
		return Notebook{}, newValidationError("infographic", "data must not be empty")
	}

	return m.mutate(ctx, id, func(nb *Notebook) error {
		nb.Infographic = &Infographic{
			Data:      data,
			Generated: m.now(),
		}
		return nil
	})
}

// GenerateInfographic aggregates the notebook's sources, renders them with gen
// and stores the result. Rendering runs outside the write queue.
func (m *Manager) GenerateInfographic(ctx context.Context, id int64, gen InfographicGenerator) (Notebook, error) {
	nb, err := m.store.Get(ctx, id)
	if err != nil {
		return Notebook{}, err
	}

	text, err := Aggregate(nb)
	if err != nil {
		return Notebook{}, err
	}

	start := time.Now()
	data, err := gen.Generate(ctx, text)
	if err != nil {
		return Notebook{}, fmt.Errorf("generate infographic: %w", err)
	}
	m.log.Debug("infographic rendered",
		zap.Int64("id", id),
		zap.Int("sources", len(nb.Sources)),
		zap.Duration("elapsed", time.Since(start)))

	saved, err := m.SaveInfographic(ctx, id, data)
	if err != nil {
		return Notebook{}, err
	}

	m.log.Info("infographic generated", zap.Int64("id", id), zap.Int("bytes", len(data)))
	return saved, nil
}

// mutate runs a get -> change -> update cycle for id inside the write queue.
func (m *Manager) mutate(ctx context.Context, id int64, change func(nb *Notebook) error) (Notebook, error) {
	var out Notebook
	err := m.queue.Execute(ctx, id, func() error {
		nb, err := m.store.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := change(&nb); err != nil {
			return err
		}
		nb.Updated = m.now()

		updated, err := m.store.Update(ctx, nb)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return Notebook{}, err
	}
	return out, nil
}
