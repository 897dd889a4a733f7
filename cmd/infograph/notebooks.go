package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/infograph/pkg/notebooks"
)

var showContentFlag bool

var notebooksCmd = &cobra.Command{
	Use:     "notebooks",
	Aliases: []string{"nb"},
	Short:   "Manage notebooks",
	Long:    `Create, list, show, rename, and delete notebooks.`,
}

var createNotebookCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new notebook",
	Long:  `Create a new empty notebook. Without a name it is called "Notebook <date>".`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var name string
		if len(args) == 1 {
			name = args[0]
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		nb, err := a.manager.CreateNotebook(cmd.Context(), name)
		if err != nil {
			return fmt.Errorf("failed to create notebook: %w", err)
		}

		fmt.Printf("Notebook created: %s (ID: %d)\n", nb.Name, nb.ID)
		return nil
	},
}

var listNotebooksCmd = &cobra.Command{
	Use:   "list",
	Short: "List notebooks, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		all, err := a.manager.ListNotebooks(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list notebooks: %w", err)
		}

		if len(all) == 0 {
			fmt.Println("No notebooks found.")
			return nil
		}

		fmt.Printf("Found %d notebooks:\n", len(all))
		for _, nb := range all {
			graphic := "no"
			if nb.Infographic != nil {
				graphic = "yes"
			}
			fmt.Printf("- [%d] %s (sources: %d, infographic: %s, updated: %s)\n",
				nb.ID, nb.Name, len(nb.Sources), graphic, formatTimestamp(nb.Updated))
		}
		return nil
	},
}

var showNotebookCmd = &cobra.Command{
	Use:   "show [notebook-id]",
	Short: "Show a notebook and its sources",
	Args:  cobra.ExactArgs(1),
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

		nb, err := a.manager.GetNotebook(cmd.Context(), id)
		if errors.Is(err, notebooks.ErrNotFound) {
			return fmt.Errorf("notebook not found: %d", id)
		}
		if err != nil {
			return fmt.Errorf("failed to get notebook: %w", err)
		}

		printNotebook(nb, showContentFlag)
		return nil
	},
}

var renameNotebookCmd = &cobra.Command{
	Use:   "rename [notebook-id] [name]",
	Short: "Rename a notebook",
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

		nb, err := a.manager.RenameNotebook(cmd.Context(), id, args[1])
		if errors.Is(err, notebooks.ErrNotFound) {
			return fmt.Errorf("notebook not found: %d", id)
		}
		if err != nil {
			return fmt.Errorf("failed to rename notebook: %w", err)
		}

		fmt.Printf("Notebook %d renamed to %s\n", nb.ID, nb.Name)
		return nil
	},
}

var deleteNotebookCmd = &cobra.Command{
	Use:   "delete [notebook-id]",
	Short: "Delete a notebook with its sources and infographic",
	Args:  cobra.ExactArgs(1),
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

		err = a.manager.DeleteNotebook(cmd.Context(), id)
		if errors.Is(err, notebooks.ErrNotFound) {
			return fmt.Errorf("notebook not found: %d", id)
		}
		if err != nil {
			return fmt.Errorf("failed to delete notebook: %w", err)
		}

		fmt.Printf("Notebook %d deleted\n", id)
		return nil
	},
}

func initNotebooksCmd() {
	showNotebookCmd.Flags().BoolVar(&showContentFlag, "content", false, "Print the full content of every source")

	notebooksCmd.AddCommand(
		createNotebookCmd,
		listNotebooksCmd,
		showNotebookCmd,
		renameNotebookCmd,
		deleteNotebookCmd,
	)
}

func printNotebook(nb notebooks.Notebook, withContent bool) {
	fmt.Println("Notebook Details:")
	fmt.Printf("ID:          %d\n", nb.ID)
	fmt.Printf("Name:        %s\n", nb.Name)
	fmt.Printf("Created At:  %s\n", formatTimestamp(nb.Created))
	fmt.Printf("Updated At:  %s\n", formatTimestamp(nb.Updated))
	if nb.Infographic != nil {
		fmt.Printf("Infographic: generated %s\n", formatTimestamp(nb.Infographic.Generated))
	} else {
		fmt.Println("Infographic: none")
	}

	fmt.Printf("\nSources (%d):\n", len(nb.Sources))
	for i, src := range nb.Sources {
		fmt.Printf("%d. [%s] %s (added %s)\n", i+1, src.Type, src.ID, formatTimestamp(src.Added))
		if u := src.Metadata[notebooks.MetaURL]; u != "" {
			fmt.Printf("   URL: %s\n", u)
		}
		if withContent {
			fmt.Println("------------------------------------------------------------")
			fmt.Println(src.Content)
			fmt.Println("------------------------------------------------------------")
		} else {
			fmt.Printf("   %s\n", preview(src.Content, 72))
		}
	}
}

// preview flattens whitespace and cuts content to width runes.
func preview(content string, width int) string {
	flat := strings.Join(strings.Fields(content), " ")
	runes := []rune(flat)
	if len(runes) <= width {
		return flat
	}
	return string(runes[:width-3]) + "..."
}
