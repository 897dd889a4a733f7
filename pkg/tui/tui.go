// Package tui is a terminal browser for notebooks: list notebooks, add and
// remove sources, generate and export infographics.
package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unowned-ai/infograph/pkg/fetch"
	"github.com/unowned-ai/infograph/pkg/notebooks"
)

// Options wires the TUI to the application services.
type Options struct {
	Manager     *notebooks.Manager
	Generator   notebooks.InfographicGenerator
	Pages       fetch.PageFetcher
	Transcripts fetch.TranscriptFetcher
	// DBFile is shown in the info panel.
	DBFile string
	// ExportDir receives exported PNG files. Empty means the working directory.
	ExportDir string
}

type inputMode int

const (
	modeBrowse inputMode = iota
	modeNewNotebook
	modeAddSource
	modeConfirmDelete
)

type model struct {
	opts Options

	notebooks []notebooks.Notebook
	current   notebooks.Notebook // Selected notebook with its sources

	columnFocus int // 0 = notebooks, 1 = sources, 2 = details
	width       int
	height      int
	err         error
	status      string

	quitting bool

	notebookCursor int
	sourceCursor   int

	mode             inputMode
	addKind          notebooks.SourceType
	input            textinput.Model
	formError        string
	deleteSource     bool // Confirming a source removal rather than a notebook deletion
	deleteConfirmIdx int  // 0 = "Yes" selected, 1 = "No"

	// Animation state
	marqueeOffset int
	marqueeTimer  int
}

// Initialize TUI model
func initModel(opts Options) model {
	in := textinput.New()
	in.CharLimit = 0
	in.Cursor.SetMode(cursor.CursorStatic)

	return model{
		opts:      opts,
		notebooks: []notebooks.Notebook{},
		input:     in,
	}
}

func tick() tea.Cmd {
	return tea.Tick(marqueeTickDuration, func(t time.Time) tea.Msg {
		return t
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(listNotebooks(m.opts), tick())
}

func (m model) selected() (notebooks.Notebook, bool) {
	if m.notebookCursor < 0 || m.notebookCursor >= len(m.notebooks) {
		return notebooks.Notebook{}, false
	}
	return m.notebooks[m.notebookCursor], true
}

func (m model) selectedSource() (notebooks.Source, bool) {
	if m.sourceCursor < 0 || m.sourceCursor >= len(m.current.Sources) {
		return notebooks.Source{}, false
	}
	return m.current.Sources[m.sourceCursor], true
}

// Processes events like window resize, errors, loaded data, and key presses
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case error:
		m.err = msg
		m.status = ""
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case notebooksLoadedMsg:
		m.notebooks = msg
		if m.notebookCursor >= len(m.notebooks) {
			m.notebookCursor = max(len(m.notebooks)-1, 0)
		}
		if nb, ok := m.selected(); ok {
			return m, loadNotebook(m.opts, nb.ID)
		}
		m.current = notebooks.Notebook{}
		return m, nil

	case notebookLoadedMsg:
		nb := notebooks.Notebook(msg)
		m.current = nb
		found := false
		for i := range m.notebooks {
			if m.notebooks[i].ID == nb.ID {
				m.notebooks[i] = nb
				m.notebookCursor = i
				found = true
				break
			}
		}
		if !found {
			m.notebooks = append([]notebooks.Notebook{nb}, m.notebooks...)
			m.notebookCursor = 0
		}
		if m.sourceCursor >= len(nb.Sources) {
			m.sourceCursor = max(len(nb.Sources)-1, 0)
		}
		if len(nb.Sources) == 0 && m.columnFocus > 0 {
			m.columnFocus = 0
		}
		return m, nil

	case notebookDeletedMsg:
		for i := range m.notebooks {
			if m.notebooks[i].ID == int64(msg) {
				m.notebooks = append(m.notebooks[:i], m.notebooks[i+1:]...)
				break
			}
		}
		m.columnFocus = 0
		m.sourceCursor = 0
		if m.notebookCursor >= len(m.notebooks) {
			m.notebookCursor = max(len(m.notebooks)-1, 0)
		}
		m.status = "Notebook deleted."
		if nb, ok := m.selected(); ok {
			return m, loadNotebook(m.opts, nb.ID)
		}
		m.current = notebooks.Notebook{}
		return m, nil

	case tea.KeyMsg:
		m.err = nil
		switch m.mode {
		case modeNewNotebook, modeAddSource:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)

	case time.Time:
		// Update marquee animation every x ticks (adjust for speed)
		m.marqueeTimer++
		if m.marqueeTimer >= 10 {
			m.marqueeTimer = 0
			m.marqueeOffset++
		}
		return m, tick()
	}

	return m, nil
}

func (m model) openForm(mode inputMode, kind notebooks.SourceType, placeholder string) model {
	m.mode = mode
	m.addKind = kind
	m.formError = ""
	m.status = ""
	m.input.Reset()
	m.input.Placeholder = placeholder
	m.input.Focus()
	return m
}

func (m model) closeForm() model {
	m.mode = modeBrowse
	m.formError = ""
	m.input.Blur()
	m.input.Reset()
	return m
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		if m.mode == modeNewNotebook {
			m = m.closeForm()
			return m, createNotebook(m.opts, value)
		}
		if value == "" {
			m.formError = "Input cannot be empty"
			return m, nil
		}
		id := m.current.ID
		kind := m.addKind
		m = m.closeForm()
		if kind != notebooks.SourceText {
			m.status = "Fetching " + value + " ..."
		}
		return m, addSource(m.opts, id, kind, value)

	case tea.KeyEsc:
		return m.closeForm(), nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.deleteConfirmIdx = 0
	case "down", "j":
		m.deleteConfirmIdx = 1
	case "esc":
		m.mode = modeBrowse
	case "enter":
		m.mode = modeBrowse
		if m.deleteConfirmIdx != 0 {
			return m, nil
		}
		if m.deleteSource {
			src, ok := m.selectedSource()
			if !ok {
				return m, nil
			}
			return m, removeSource(m.opts, m.current.ID, src.ID)
		}
		if nb, ok := m.selected(); ok {
			return m, deleteNotebook(m.opts, nb.ID)
		}
	}
	return m, nil
}

func (m model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nb, hasNotebook := m.selected()

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		// Exit alt screen before quitting so the goodbye message displays
		return m, tea.Sequence(tea.ExitAltScreen, tea.Quit)

	case "up", "k":
		if m.columnFocus == 0 && m.notebookCursor > 0 {
			m.notebookCursor--
			m.sourceCursor = 0
			return m, loadNotebook(m.opts, m.notebooks[m.notebookCursor].ID)
		}
		if m.columnFocus == 1 && m.sourceCursor > 0 {
			m.sourceCursor--
		}

	case "down", "j":
		if m.columnFocus == 0 && m.notebookCursor < len(m.notebooks)-1 {
			m.notebookCursor++
			m.sourceCursor = 0
			return m, loadNotebook(m.opts, m.notebooks[m.notebookCursor].ID)
		}
		if m.columnFocus == 1 && m.sourceCursor < len(m.current.Sources)-1 {
			m.sourceCursor++
		}

	case "right", "l", "enter":
		if m.columnFocus < 2 && len(m.current.Sources) > 0 {
			m.columnFocus++
		}

	case "left", "h", "esc":
		if m.columnFocus > 0 {
			m.columnFocus--
		}

	case "n":
		return m.openForm(modeNewNotebook, "", "Notebook name (empty for a dated default)"), nil

	case "t":
		if hasNotebook {
			return m.openForm(modeAddSource, notebooks.SourceText, "Paste text"), nil
		}

	case "u":
		if hasNotebook {
			return m.openForm(modeAddSource, notebooks.SourceURL, "https://example.com/article"), nil
		}

	case "y":
		if hasNotebook {
			return m.openForm(modeAddSource, notebooks.SourceYouTube, "YouTube URL or video id"), nil
		}

	case "d":
		if m.columnFocus == 0 && hasNotebook {
			m.deleteSource = false
		} else if _, ok := m.selectedSource(); ok && m.columnFocus > 0 {
			m.deleteSource = true
		} else {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.deleteConfirmIdx = 1

	case "g":
		if hasNotebook {
			m.status = "Generating infographic ..."
			return m, generateInfographic(m.opts, nb.ID)
		}

	case "e":
		if hasNotebook {
			return m, exportInfographic(m.opts, m.current)
		}

	case "r":
		return m, listNotebooks(m.opts)
	}

	return m, nil
}

// Assembles the UI string for each frame
func (m model) View() string {
	if m.quitting {
		return "Closing notebooks... Session saved.\n"
	}

	titleBar := titleStyle.Width(m.width).Render("Infograph - notebooks to infographics")
	leftWidth, middleWidth, rightWidth := m.columnWidths()
	panelHeight := max(m.height-4, 1)

	left := m.viewNotebooks(leftWidth)
	middle := m.viewSources(middleWidth)
	right := m.viewDetails(rightWidth)

	leftPanel := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(lipgloss.Color(colorGray)).
		Padding(0, 2).Width(leftWidth).Height(panelHeight).Render(left)
	middlePanel := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(lipgloss.Color(colorGray)).
		Padding(0, 2).Width(middleWidth).Height(panelHeight).Render(middle)
	rightPanel := lipgloss.NewStyle().Padding(0, 2).
		Width(rightWidth).Height(panelHeight).Render(right)

	columns := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, middlePanel, rightPanel)

	footerText := "↑/↓ navigate • ←/→ columns • n notebook • t text • u url • y youtube • d delete • g generate • e export • q quit"
	footer := footerStyle.Width(m.width).Render(footerText)
	switch {
	case m.err != nil:
		footer = errorStyle.Render("Error: "+m.err.Error()) + "\n" + footer
	case m.status != "":
		footer = TextStatusColorize(m.status, 1) + "\n" + footer
	}

	return titleBar + "\n\n" + columns + "\n" + footer
}

func (m model) viewNotebooks(width int) string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render("  Notebooks"))
	b.WriteString("\n\n")

	if len(m.notebooks) == 0 {
		b.WriteString("No notebooks yet. Press 'n' to create one.\n")
	}
	available := width - 2 - bordersAndPaddingWidth - 1
	for i, nb := range m.notebooks {
		pointer := generateLinePointer(i == m.notebookCursor && m.columnFocus == 0, 2)
		if i == m.notebookCursor {
			b.WriteString(pointer + selectedStyle.Render(m.marqueeText(nb.Name, available)) + "\n")
		} else {
			b.WriteString(pointer + inactiveStyle.Render(truncate(nb.Name, available)) + "\n")
		}
	}

	dbStatus := 0
	if m.opts.DBFile != "" {
		dbStatus = 1
	}
	b.WriteString("\n\nDatabase file: " + TextStatusColorize(filepath.Base(m.opts.DBFile), dbStatus) + "\n")
	return b.String()
}

func (m model) viewSources(width int) string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render("  Sources"))
	b.WriteString("\n\n")

	if _, ok := m.selected(); !ok {
		b.WriteString("  No notebook selected.\n")
		return b.String()
	}
	if len(m.current.Sources) == 0 {
		b.WriteString("  No sources yet. Press 't', 'u' or 'y' to add one.\n")
		return b.String()
	}

	available := width - 2 - bordersAndPaddingWidth - 1
	for i, src := range m.current.Sources {
		pointer := generateLinePointer(i == m.sourceCursor && m.columnFocus == 1, 2)
		label := truncate(fmt.Sprintf("[%s] %s", src.Type, preview(src.Content)), available)
		if i == m.sourceCursor && m.columnFocus > 0 {
			b.WriteString(pointer + selectedStyle.Render(label) + "\n")
		} else {
			b.WriteString(pointer + inactiveStyle.Render(label) + "\n")
		}
	}
	return b.String()
}

func (m model) viewDetails(width int) string {
	var b strings.Builder
	m.input.Width = max(width-bordersAndPaddingWidth-2, 10)

	switch m.mode {
	case modeNewNotebook, modeAddSource:
		title := "Create Notebook"
		if m.mode == modeAddSource {
			title = "Add " + string(m.addKind) + " source"
		}
		b.WriteString(subtitleStyle.Render(title) + "\n\n")
		b.WriteString(m.input.View() + "\n\n")
		b.WriteString("(enter to submit, esc to cancel)")
		if m.formError != "" {
			b.WriteString("\n\n" + errorStyle.Render(m.formError) + "\n")
		}
		return b.String()

	case modeConfirmDelete:
		target := m.current.Name
		title := "Delete Notebook"
		if m.deleteSource {
			title = "Remove Source"
			if src, ok := m.selectedSource(); ok {
				target = preview(src.Content)
			}
		}
		b.WriteString(subtitleStyle.Render(title) + "\n\n")
		b.WriteString(errorStyle.Render(target) + "\n\n")
		yesOpt, noOpt := inactiveStyle.Render("  Yes"), selectedStyle.Render(" >No")
		if m.deleteConfirmIdx == 0 {
			yesOpt, noOpt = dangerSelectedStyle.Render(" >Yes"), inactiveStyle.Render("  No")
		}
		b.WriteString(yesOpt + "\n" + noOpt + "\n\n")
		b.WriteString("(enter to confirm, esc to cancel, up/down to switch)")
		return b.String()
	}

	if _, ok := m.selected(); !ok {
		b.WriteString("Select a notebook to view details.")
		return b.String()
	}

	if src, ok := m.selectedSource(); ok && m.columnFocus > 0 {
		b.WriteString(subtitleStyle.Render("Source") + "\n\n")
		b.WriteString(labelStyle.Render("Type: ") + tagStyle.Render(string(src.Type)) + "\n")
		b.WriteString(labelStyle.Render("Added: ") + src.Added.Local().Format(time.DateTime) + "\n")
		keys := make([]string, 0, len(src.Metadata))
		for k := range src.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(labelStyle.Render(k+": ") + src.Metadata[k] + "\n")
		}
		b.WriteString("\n" + lipgloss.NewStyle().Width(max(width-bordersAndPaddingWidth, 10)).Render(src.Content))
		return b.String()
	}

	nb := m.current
	b.WriteString(subtitleStyle.Render("Notebook") + "\n\n")
	b.WriteString(labelStyle.Render("Name: ") + nb.Name + "\n")
	b.WriteString(labelStyle.Render("Created: ") + nb.Created.Local().Format(time.DateTime) + "\n")
	b.WriteString(labelStyle.Render("Updated: ") + nb.Updated.Local().Format(time.DateTime) + "\n")
	b.WriteString(labelStyle.Render("Sources: ") + fmt.Sprint(len(nb.Sources)) + "\n")
	if nb.Infographic != nil {
		b.WriteString(labelStyle.Render("Infographic: ") +
			TextStatusColorize("generated "+nb.Infographic.Generated.Local().Format(time.DateTime), 1) + "\n")
	} else {
		b.WriteString(labelStyle.Render("Infographic: ") + TextStatusColorize("none", 2) + "\n")
	}
	return b.String()
}

// preview collapses content onto a single line.
func preview(content string) string {
	return strings.Join(strings.Fields(content), " ")
}

// ShowTUI starts the Bubble Tea program and blocks until the user quits.
func ShowTUI(opts Options) error {
	p := tea.NewProgram(initModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
