package tui

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/infograph/pkg/db"
	"github.com/unowned-ai/infograph/pkg/infographic"
	"github.com/unowned-ai/infograph/pkg/notebooks"
)

func setupTestModel(t *testing.T) model {
	t.Helper()

	conn, err := db.OpenDBConnection(":memory:", false, "NORMAL")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	store := notebooks.NewSQLStore(conn, "test", nil)
	require.NoError(t, store.Init(context.Background()))

	manager := notebooks.NewManager(store, nil, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = manager.Close(ctx)
	})

	gen, err := infographic.NewGenerator(nil)
	require.NoError(t, err)

	m := initModel(Options{
		Manager:   manager,
		Generator: gen,
		DBFile:    ":memory:",
		ExportDir: t.TempDir(),
	})
	return feed(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

// feed applies msg and then synchronously runs any command it returns,
// following chains of data messages.
func feed(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(model)
	for cmd != nil {
		out := cmd()
		switch out.(type) {
		case notebooksLoadedMsg, notebookLoadedMsg, notebookDeletedMsg, statusMsg, error:
			next, cmd = m.Update(out)
			m = next.(model)
		default:
			return m
		}
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_NotebookLifecycle(t *testing.T) {
	m := setupTestModel(t)
	m = feed(t, m, listNotebooks(m.opts)())
	assert.Empty(t, m.notebooks)
	assert.Contains(t, m.View(), "No notebooks yet")

	// Create a notebook.
	m = feed(t, m, key("n"))
	require.Equal(t, modeNewNotebook, m.mode)
	m = feed(t, m, key("Trip"))
	m = feed(t, m, key("enter"))
	require.Equal(t, modeBrowse, m.mode)
	require.Len(t, m.notebooks, 1)
	assert.Equal(t, "Trip", m.notebooks[0].Name)
	assert.Equal(t, "Trip", m.current.Name)

	// Add a text source.
	m = feed(t, m, key("t"))
	require.Equal(t, modeAddSource, m.mode)
	m = feed(t, m, key("Paris is the capital of France. It has the Eiffel Tower."))
	m = feed(t, m, key("enter"))
	require.Len(t, m.current.Sources, 1)
	assert.Equal(t, notebooks.SourceText, m.current.Sources[0].Type)

	// Empty input is rejected in the form.
	m = feed(t, m, key("t"))
	m = feed(t, m, key("enter"))
	assert.Equal(t, modeAddSource, m.mode)
	assert.NotEmpty(t, m.formError)
	m = feed(t, m, key("esc"))
	assert.Equal(t, modeBrowse, m.mode)

	// Generate and export.
	m = feed(t, m, key("g"))
	require.NoError(t, m.err)
	require.NotNil(t, m.current.Infographic)

	m = feed(t, m, key("e"))
	require.NoError(t, m.err)
	require.True(t, strings.HasPrefix(m.status, "Saved "), m.status)
	_, err := os.Stat(strings.TrimPrefix(m.status, "Saved "))
	assert.NoError(t, err)

	// Delete with confirmation.
	m = feed(t, m, key("d"))
	require.Equal(t, modeConfirmDelete, m.mode)
	assert.Equal(t, 1, m.deleteConfirmIdx)
	m = feed(t, m, key("k"))
	m = feed(t, m, key("enter"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.Empty(t, m.notebooks)
	assert.Equal(t, int64(0), m.current.ID)
}

func TestModel_RemoveSource(t *testing.T) {
	m := setupTestModel(t)

	m = feed(t, m, key("n"))
	m = feed(t, m, key("enter"))
	require.Len(t, m.notebooks, 1)
	assert.True(t, strings.HasPrefix(m.current.Name, "Notebook "))

	for _, text := range []string{"first source", "second source"} {
		m = feed(t, m, key("t"))
		m = feed(t, m, key(text))
		m = feed(t, m, key("enter"))
	}
	require.Len(t, m.current.Sources, 2)

	m = feed(t, m, key("l"))
	require.Equal(t, 1, m.columnFocus)
	m = feed(t, m, key("j"))
	assert.Equal(t, 1, m.sourceCursor)
	assert.Contains(t, m.View(), "second source")

	m = feed(t, m, key("d"))
	require.Equal(t, modeConfirmDelete, m.mode)
	assert.True(t, m.deleteSource)

	// Declining keeps the source.
	m = feed(t, m, key("enter"))
	require.Len(t, m.current.Sources, 2)

	m = feed(t, m, key("d"))
	m = feed(t, m, key("k"))
	m = feed(t, m, key("enter"))
	require.Len(t, m.current.Sources, 1)
	assert.Equal(t, "first source", m.current.Sources[0].Content)
	assert.Equal(t, 0, m.sourceCursor)
}

func TestModel_GenerateWithoutSourcesShowsError(t *testing.T) {
	m := setupTestModel(t)

	m = feed(t, m, key("n"))
	m = feed(t, m, key("Empty"))
	m = feed(t, m, key("enter"))

	m = feed(t, m, key("g"))
	require.ErrorIs(t, m.err, notebooks.ErrNoSources)
	assert.Contains(t, m.View(), "add at least one source")

	m = feed(t, m, key("e"))
	assert.Contains(t, m.status, "No infographic yet")
}

func TestTruncateAndMarquee(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a long..", truncate("a long name", 8))
	assert.Equal(t, "", truncate("abc", -2))

	m := model{marqueeOffset: 2}
	assert.Equal(t, "fits", m.marqueeText("fits", 10))
	assert.Equal(t, "cdef", m.marqueeText("abcdefgh", 4))
}
