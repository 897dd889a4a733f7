package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	infograph "github.com/unowned-ai/infograph/pkg"
	pkgdb "github.com/unowned-ai/infograph/pkg/db"
)

var (
	dbPath     string
	walMode    bool
	syncMode   string
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:     "infograph",
	Short:   "Collect text sources into notebooks and turn them into infographics.",
	Long:    ``,
	Version: fmt.Sprintf("v%s", infograph.Version),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for infograph.

The command prints a completion script to stdout. You can source it in your shell
or install it to the appropriate location for your shell to enable completions permanently.

Examples:

  Bash (current shell):
    $ source <(infograph completion bash)

  Bash (persist):
    $ infograph completion bash > /etc/bash_completion.d/infograph

  Zsh:
    $ infograph completion zsh > "${fpath[1]}/_infograph"

  Fish:
    $ infograph completion fish | source
    $ infograph completion fish > ~/.config/fish/completions/infograph.fish

  PowerShell:
    PS> infograph completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of infograph",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(infograph.Version)
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the infograph database",
	Long:  `Provides commands for managing the infograph SQLite database, including schema upgrades.`,
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the notebooks schema to the latest version",
	Long: `Connects to the SQLite database (the --db flag, the config file, or the
system default location) and applies any necessary schema migrations to bring the
notebooks component up to the current application schema version. A database that
does not exist yet is created and initialized with the latest schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		path, err := resolveDBPath(cfg)
		if err != nil {
			return err
		}

		fmt.Printf("Upgrading notebooks component in database at: %s (WAL: %t, Sync: %s)\n", path, cfg.Database.WAL, cfg.Database.Sync)

		dbConn, err := pkgdb.OpenDBConnection(path, cfg.Database.WAL, cfg.Database.Sync)
		if err != nil {
			return err
		}
		defer pkgdb.CloseDBConnection(dbConn)

		return pkgdb.UpgradeDB(dbConn, path, pkgdb.TargetSchemaVersion, log)
	},
}

func initCmd() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (uses a system-specific default if not provided)")
	rootCmd.PersistentFlags().BoolVar(&walMode, "wal", false, "Enable SQLite WAL (Write-Ahead Logging) mode")
	rootCmd.PersistentFlags().StringVar(&syncMode, "sync", "FULL", "SQLite synchronous pragma (OFF, NORMAL, FULL, EXTRA)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (defaults to the per-user config location)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	dbCmd.AddCommand(dbUpgradeCmd)

	initNotebooksCmd()
	initSourcesCmd()
	initGenerateCmd()
	initExportCmd()
	rootCmd.AddCommand(completionCmd, versionCmd, dbCmd, notebooksCmd, sourcesCmd, generateCmd, exportCmd, mcpCmd)
}

func main() {
	initCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
