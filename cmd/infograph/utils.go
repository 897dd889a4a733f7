package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unowned-ai/infograph/pkg/config"
	pkgdb "github.com/unowned-ai/infograph/pkg/db"
	"github.com/unowned-ai/infograph/pkg/fetch"
	"github.com/unowned-ai/infograph/pkg/infographic"
	"github.com/unowned-ai/infograph/pkg/logger"
	"github.com/unowned-ai/infograph/pkg/notebooks"
	"github.com/unowned-ai/infograph/pkg/utils"
	"github.com/unowned-ai/infograph/pkg/writequeue"
)

const shutdownTimeout = 10 * time.Second

// app holds everything a command needs once the database is open.
type app struct {
	cfg         *config.Config
	log         *zap.Logger
	dbPath      string
	db          *sql.DB
	manager     *notebooks.Manager
	generator   *infographic.Generator
	pages       fetch.PageFetcher
	transcripts fetch.TranscriptFetcher
}

// loadConfig reads the config file and applies any flags set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, optional := configPath, false
	if path == "" {
		path, optional = utils.GetDefaultConfigPath(), true
	}

	cfg, err := config.Load(path, optional)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Database.Path = dbPath
	}
	if flags.Changed("wal") {
		cfg.Database.WAL = walMode
	}
	if flags.Changed("sync") {
		cfg.Database.Sync = syncMode
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(cfg.Log.Mode, cfg.Log.Level)
}

func resolveDBPath(cfg *config.Config) (string, error) {
	path, err := utils.ResolveAndEnsureDBPath(cfg.Database.Path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve database path: %w", err)
	}
	return path, nil
}

// openApp opens the database, brings its schema up to date and wires the
// notebook manager, fetchers and generator. Callers must call Close.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	path, err := resolveDBPath(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := pkgdb.OpenDBConnection(path, cfg.Database.WAL, cfg.Database.Sync)
	if err != nil {
		return nil, err
	}

	store := notebooks.NewSQLStore(conn, path, log)
	if err := store.Init(cmd.Context()); err != nil {
		conn.Close()
		return nil, err
	}

	generator, err := infographic.NewGenerator(log)
	if err != nil {
		conn.Close()
		return nil, err
	}

	queue := writequeue.New(&writequeue.Config{
		QueueCapacity: cfg.Queue.Capacity,
		WriteTimeout:  cfg.Queue.WriteTimeout,
		IdleTimeout:   cfg.Queue.IdleTimeout,
	}, log)

	fetchOpts := fetch.Options{
		Timeout:   cfg.Fetch.Timeout,
		UserAgent: cfg.Fetch.UserAgent,
		Logger:    log,
	}

	log.Debug("database opened",
		zap.String("path", path),
		zap.Bool("wal", cfg.Database.WAL),
		zap.String("sync", cfg.Database.Sync))

	return &app{
		cfg:         cfg,
		log:         log,
		dbPath:      path,
		db:          conn,
		manager:     notebooks.NewManager(store, queue, log),
		generator:   generator,
		pages:       fetch.NewHTTPPageFetcher(fetchOpts),
		transcripts: fetch.NewHTTPTranscriptFetcher(cfg.Fetch.TranscriptEndpoint, cfg.Fetch.TranscriptLang, fetchOpts),
	}, nil
}

// Close drains pending writes and checkpoints the database.
func (a *app) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.manager.Close(ctx); err != nil {
		a.log.Warn("write queue shutdown", zap.Error(err))
	}
	err := pkgdb.CloseDBConnection(a.db)
	a.log.Sync()
	return err
}

func parseNotebookID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid notebook ID: %q", s)
	}
	return id, nil
}

// formatTimestamp renders t in local time as RFC3339.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.RFC3339)
}
