package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/infograph/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Infograph MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes notebooks, sources
and infographic generation as MCP tools via STDIO.

The --db flag is optional. If not provided, a system-specific default location will be used:
- Windows: %USERPROFILE%\AppData\Roaming\infograph\infograph.db
- macOS: ~/Library/Application Support/infograph/infograph.db
- Linux: ~/.local/share/infograph/infograph.db

Example:
  infograph mcp
  infograph mcp --db infograph.db --wal`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := mcp.NewInfographMCPServer(mcp.Deps{
			Manager:     a.manager,
			Generator:   a.generator,
			Transcripts: a.transcripts,
			Pages:       a.pages,
			Logger:      a.log,
		})

		// Log to stderr so we don't contaminate the JSON-RPC stream on stdout.
		fmt.Fprintf(os.Stderr, "Infograph MCP server started. DB: %s (WAL: %t, Sync: %s)\n", a.dbPath, a.cfg.Database.WAL, a.cfg.Database.Sync)
		fmt.Fprintln(os.Stderr, "Available tools: ping, create_notebook, list_notebooks, get_notebook, rename_notebook, delete_notebook, add_text_source, add_url_source, add_youtube_source, remove_source, generate_infographic")
		fmt.Fprintln(os.Stderr, "Listening for MCP JSON-RPC on STDIN/STDOUT ... (Ctrl+C to quit)")

		return srv.Start()
	},
}
