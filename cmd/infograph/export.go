package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/infograph/pkg/infographic"
	"github.com/unowned-ai/infograph/pkg/notebooks"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export [notebook-id]",
	Short: "Write a notebook's infographic to a PNG file",
	Long: `Write the stored infographic of a notebook to
<dir>/infographic-<notebook name>-<unix milliseconds>.png.`,
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

		nb, err := a.manager.GetNotebook(cmd.Context(), id)
		if errors.Is(err, notebooks.ErrNotFound) {
			return fmt.Errorf("notebook not found: %d", id)
		}
		if err != nil {
			return fmt.Errorf("failed to get notebook: %w", err)
		}
		if nb.Infographic == nil {
			return fmt.Errorf("notebook %d has no infographic yet, run 'infograph generate %d' first", id, id)
		}

		path, err := infographic.WriteFile(exportDir, nb.Name, nb.Infographic.Data, time.Now())
		if err != nil {
			return fmt.Errorf("failed to write infographic: %w", err)
		}

		fmt.Printf("Saved %s\n", path)
		return nil
	},
}

func initExportCmd() {
	exportCmd.Flags().StringVar(&exportDir, "dir", ".", "Directory to write the PNG file to")
}
