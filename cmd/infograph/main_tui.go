//go:build tui

package main

import (
	"github.com/spf13/cobra"

	"github.com/unowned-ai/infograph/pkg/tui"
)

var tuiExportDir string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Show terminal UI",
	Long:  `Display an interactive terminal UI for browsing notebooks, adding sources and generating infographics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		return tui.ShowTUI(tui.Options{
			Manager:     a.manager,
			Generator:   a.generator,
			Pages:       a.pages,
			Transcripts: a.transcripts,
			DBFile:      a.dbPath,
			ExportDir:   tuiExportDir,
		})
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiExportDir, "export-dir", "", "Directory exported PNG files are written to (default: working directory)")
	rootCmd.AddCommand(tuiCmd)
}
