package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/unowned-ai/infograph/pkg/fetch"
	"github.com/unowned-ai/infograph/pkg/notebooks"
)

// maxParallelFetches caps concurrent page downloads for add-url.
const maxParallelFetches = 4

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage notebook sources",
	Long:  `Add text, web pages, and YouTube transcripts to a notebook, or remove them.`,
}

var addTextCmd = &cobra.Command{
	Use:   "add-text [notebook-id] [text]",
	Short: "Add a text source",
	Long:  `Add pasted text as a source. Without a text argument the text is read from stdin.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNotebookID(args[0])
		if err != nil {
			return err
		}

		var text string
		if len(args) == 2 {
			text = args[1]
		} else {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			text = string(data)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		nb, err := a.manager.AddSource(cmd.Context(), id, notebooks.SourceInput{
			Type:    notebooks.SourceText,
			Content: text,
		})
		if err != nil {
			return sourceError(id, err)
		}

		printAdded(nb)
		return nil
	},
}

var addURLCmd = &cobra.Command{
	Use:   "add-url [notebook-id] [url]...",
	Short: "Fetch web pages and add their text as sources",
	Long: `Fetch one or more web pages and add their readable text as sources.
Pages are downloaded in parallel and added in the order given. Nothing is added
if any page fails.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNotebookID(args[0])
		if err != nil {
			return err
		}
		urls := args[1:]

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.manager.GetNotebook(cmd.Context(), id); err != nil {
			return sourceError(id, err)
		}

		pages, err := fetchPages(cmd.Context(), a.pages, urls, a.log)
		if err != nil {
			return err
		}

		var nb notebooks.Notebook
		for _, u := range urls {
			nb, err = a.manager.AddURLSource(cmd.Context(), id, u, pages)
			if err != nil {
				return sourceError(id, err)
			}
		}

		printAdded(nb)
		return nil
	},
}

var addYouTubeCmd = &cobra.Command{
	Use:   "add-youtube [notebook-id] [video-url-or-id]",
	Short: "Add a YouTube video transcript as a source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNotebookID(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		nb, err := a.manager.AddYouTubeSource(cmd.Context(), id, args[1], a.transcripts)
		if err != nil {
			return sourceError(id, err)
		}

		printAdded(nb)
		return nil
	},
}

var removeSourceCmd = &cobra.Command{
	Use:   "remove [notebook-id] [source-id]",
	Short: "Remove a source from a notebook",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNotebookID(args[0])
		if err != nil {
			return err
		}
		sourceID, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid source ID: %w", err)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		nb, err := a.manager.RemoveSource(cmd.Context(), id, sourceID)
		if err != nil {
			return sourceError(id, err)
		}

		fmt.Printf("Notebook %d now has %d sources\n", nb.ID, len(nb.Sources))
		return nil
	},
}

func initSourcesCmd() {
	sourcesCmd.AddCommand(
		addTextCmd,
		addURLCmd,
		addYouTubeCmd,
		removeSourceCmd,
	)
}

// prefetchedPages serves page text downloaded ahead of time, keyed by the
// normalized URL.
type prefetchedPages map[string]string

func (p prefetchedPages) FetchPage(_ context.Context, rawURL string) (string, error) {
	text, ok := p[rawURL]
	if !ok {
		return "", fetch.ErrContent
	}
	return text, nil
}

// fetchPages downloads every URL concurrently and fails on the first error.
func fetchPages(ctx context.Context, f fetch.PageFetcher, urls []string, log *zap.Logger) (prefetchedPages, error) {
	keys := make([]string, len(urls))
	texts := make([]string, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for i, raw := range urls {
		g.Go(func() error {
			u, err := fetch.ValidateURL(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", raw, err)
			}
			keys[i] = u.String()
			text, err := f.FetchPage(ctx, keys[i])
			if err != nil {
				return fmt.Errorf("%s: %w", raw, err)
			}
			log.Debug("page fetched", zap.String("url", keys[i]), zap.Int("chars", len(text)))
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pages := make(prefetchedPages, len(urls))
	for i := range urls {
		pages[keys[i]] = texts[i]
	}
	return pages, nil
}

func sourceError(id int64, err error) error {
	switch {
	case errors.Is(err, notebooks.ErrNotFound):
		return fmt.Errorf("notebook not found: %d", id)
	case errors.Is(err, notebooks.ErrValidation):
		return err
	default:
		return fmt.Errorf("failed to update sources: %w", err)
	}
}

func printAdded(nb notebooks.Notebook) {
	last := nb.Sources[len(nb.Sources)-1]
	fmt.Printf("Source added: %s [%s]\n", last.ID, last.Type)
	fmt.Printf("Notebook %d (%s) now has %d sources\n", nb.ID, strings.TrimSpace(nb.Name), len(nb.Sources))
}
