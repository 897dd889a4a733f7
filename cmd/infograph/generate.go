package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/infograph/pkg/infographic"
	"github.com/unowned-ai/infograph/pkg/notebooks"
)

var generateOutDir string

var generateCmd = &cobra.Command{
	Use:   "generate [notebook-id]",
	Short: "Generate the infographic for a notebook",
	Long: `Combine every source of the notebook, pick its key statements and render
them as an 800x1000 PNG infographic stored with the notebook. Generating again
replaces the previous infographic. With --out the PNG is also written to that
directory.`,
	Args: cobra.ExactArgs(1),
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

		nb, err := a.manager.GenerateInfographic(cmd.Context(), id, a.generator)
		switch {
		case errors.Is(err, notebooks.ErrNotFound):
			return fmt.Errorf("notebook not found: %d", id)
		case errors.Is(err, notebooks.ErrNoSources):
			return fmt.Errorf("notebook %d: %w", id, err)
		case err != nil:
			return fmt.Errorf("failed to generate infographic: %w", err)
		}

		fmt.Printf("Infographic generated for notebook %d (%s)\n", nb.ID, nb.Name)
		if text, err := notebooks.Aggregate(nb); err == nil {
			statements := infographic.Extract(text)
			if len(statements) == 0 {
				fmt.Println("No key statements found; the infographic has no cards.")
			}
			for i, s := range statements {
				fmt.Printf("%d. %s\n", i+1, s)
			}
		}

		if generateOutDir != "" {
			path, err := infographic.WriteFile(generateOutDir, nb.Name, nb.Infographic.Data, time.Now())
			if err != nil {
				return fmt.Errorf("failed to write infographic: %w", err)
			}
			fmt.Printf("Saved %s\n", path)
		}
		return nil
	},
}

func initGenerateCmd() {
	generateCmd.Flags().StringVar(&generateOutDir, "out", "", "Directory to also write the PNG file to")
}
