package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/unowned-ai/infograph/pkg/infographic"
	"github.com/unowned-ai/infograph/pkg/notebooks"
)

type notebooksLoadedMsg []notebooks.Notebook

// notebookLoadedMsg carries the freshly stored state of one notebook.
type notebookLoadedMsg notebooks.Notebook

type notebookDeletedMsg int64

type statusMsg string

// List notebooks, most recently updated first
func listNotebooks(o Options) tea.Cmd {
	return func() tea.Msg {
		all, err := o.Manager.ListNotebooks(context.Background())
		if err != nil {
			return err
		}
		return notebooksLoadedMsg(all)
	}
}

func loadNotebook(o Options, id int64) tea.Cmd {
	return func() tea.Msg {
		nb, err := o.Manager.GetNotebook(context.Background(), id)
		if err != nil {
			return err
		}
		return notebookLoadedMsg(nb)
	}
}

func createNotebook(o Options, name string) tea.Cmd {
	return func() tea.Msg {
		nb, err := o.Manager.CreateNotebook(context.Background(), name)
		if err != nil {
			return err
		}
		return notebookLoadedMsg(nb)
	}
}

func deleteNotebook(o Options, id int64) tea.Cmd {
	return func() tea.Msg {
		if err := o.Manager.DeleteNotebook(context.Background(), id); err != nil {
			return err
		}
		return notebookDeletedMsg(id)
	}
}

// addSource stores a source of kind typed into the add form. URL and video
// sources are fetched first.
func addSource(o Options, id int64, kind notebooks.SourceType, input string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var nb notebooks.Notebook
		var err error
		switch kind {
		case notebooks.SourceURL:
			nb, err = o.Manager.AddURLSource(ctx, id, input, o.Pages)
		case notebooks.SourceYouTube:
			nb, err = o.Manager.AddYouTubeSource(ctx, id, input, o.Transcripts)
		default:
			nb, err = o.Manager.AddSource(ctx, id, notebooks.SourceInput{Type: notebooks.SourceText, Content: input})
		}
		if err != nil {
			return err
		}
		return notebookLoadedMsg(nb)
	}
}

func removeSource(o Options, id int64, sourceID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		nb, err := o.Manager.RemoveSource(context.Background(), id, sourceID)
		if err != nil {
			return err
		}
		return notebookLoadedMsg(nb)
	}
}

func generateInfographic(o Options, id int64) tea.Cmd {
	return func() tea.Msg {
		nb, err := o.Manager.GenerateInfographic(context.Background(), id, o.Generator)
		if err != nil {
			return err
		}
		return notebookLoadedMsg(nb)
	}
}

func exportInfographic(o Options, nb notebooks.Notebook) tea.Cmd {
	return func() tea.Msg {
		if nb.Infographic == nil {
			return statusMsg("No infographic yet. Press 'g' to generate one.")
		}
		path, err := infographic.WriteFile(o.ExportDir, nb.Name, nb.Infographic.Data, time.Now())
		if err != nil {
			return err
		}
		return statusMsg(fmt.Sprintf("Saved %s", path))
	}
}
