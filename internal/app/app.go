package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/five82/albumdeck/internal/albums"
	"github.com/five82/albumdeck/internal/config"
	"github.com/five82/albumdeck/internal/env"
	"github.com/five82/albumdeck/internal/logging"
	"github.com/five82/albumdeck/internal/prefs"
	"github.com/five82/albumdeck/internal/request"
	"github.com/five82/albumdeck/internal/state"
	"github.com/five82/albumdeck/internal/ui"
)

// Options configure the albumdeck application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/albumdeck/prefs.toml
	// APIBase overrides every other source of the base URL.
	APIBase  string
	LogLevel string
	// EnvFile is a dotenv file filling unset APPLICATION_* variables.
	EnvFile string
	Version string
	// StartPath is the first route the UI shows.
	StartPath string
}

// Session holds the wired dependencies of one albumdeck run.
type Session struct {
	Config  config.Config
	BaseURL string
	LogPath string
	Logger  *log.Logger
	Store   *state.Store
	Factory *request.Factory
	Albums  *albums.Service

	closeLog func() error
}

// Open loads configuration, settles the base URL, opens the log file and
// builds the store, request factory and albums service.
func Open(opts Options) (*Session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		return nil, err
	}
	logPath := cfg.LogPath()
	logger, closeLog, err := logging.OpenFile(logPath, level)
	if err != nil {
		return nil, err
	}

	vars, err := env.Load(opts.EnvFile)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	persisted, err := env.EnsureApplicationURL(opts.PrefsPath, vars)
	if err != nil {
		// The UI still works against the configured or default origin.
		logger.Warn("application url not persisted", "err", err)
	}

	baseURL, source, err := ResolveBaseURL(opts.APIBase, cfg.APIBase, persisted)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	logger.Info("albumdeck starting", "version", opts.Version, "base_url", baseURL, "source", source, "config", cfg.Path)

	store := state.New()
	factory := request.NewFactory(store,
		request.WithBaseURL(baseURL),
		request.WithLogger(logger),
	)

	return &Session{
		Config:   cfg,
		BaseURL:  factory.BaseURL(),
		LogPath:  logPath,
		Logger:   logger,
		Store:    store,
		Factory:  factory,
		Albums:   albums.NewService(factory),
		closeLog: closeLog,
	}, nil
}

// Close flushes and closes the log file.
func (s *Session) Close() error {
	if s == nil || s.closeLog == nil {
		return nil
	}
	err := s.closeLog()
	s.closeLog = nil
	return err
}

// Base URL sources, in precedence order.
const (
	SourceFlag      = "flag"
	SourceConfig    = "config"
	SourcePersisted = "prefs"
	SourceDefault   = "default"
)

// ResolveBaseURL picks the API origin. An explicit flag or config value must
// parse; a persisted value that does not parse is skipped, since it is built
// from environment variables that may all be unset.
func ResolveBaseURL(flag, configured, persisted string) (string, string, error) {
	if flag != "" {
		base, err := request.ParseBaseURL(flag)
		if err != nil {
			return "", "", fmt.Errorf("--api: %w", err)
		}
		return base, SourceFlag, nil
	}
	if configured != "" {
		base, err := request.ParseBaseURL(configured)
		if err != nil {
			return "", "", fmt.Errorf("config api_base: %w", err)
		}
		return base, SourceConfig, nil
	}
	if persisted != "" {
		if base, err := request.ParseBaseURL(persisted); err == nil {
			return base, SourcePersisted, nil
		}
	}
	return request.DefaultBaseURL, SourceDefault, nil
}

// Run boots the albumdeck TUI until the context is cancelled or the user
// quits.
func Run(ctx context.Context, opts Options) error {
	session, err := Open(opts)
	if err != nil {
		return err
	}
	defer session.Close()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		session.Logger.Warn("prefs unreadable", "err", err)
	}

	err = ui.Run(ui.Options{
		Context:   ctx,
		Catalog:   session.Albums,
		Store:     session.Store,
		Logger:    session.Logger,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		BaseURL:   session.BaseURL,
		Version:   opts.Version,
		LogPath:   session.LogPath,
		StartPath: opts.StartPath,
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		session.Logger.Error("ui exited", "err", err)
		fmt.Fprintf(os.Stderr, "see %s for details\n", session.LogPath)
	}
	return err
}
