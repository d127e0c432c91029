package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is what albumdeck reads from config.toml.
type Config struct {
	// APIBase is the albums API origin as written; the app package validates
	// it and ranks it below the --api flag.
	APIBase string
	// LogDir holds albumdeck.log. The TUI owns the terminal, so the log file
	// is the only place diagnostics go.
	LogDir string
	// Path is the config file that was read, empty when none existed.
	Path string
}

const (
	defaultConfigPath = "~/.config/albumdeck/config.toml"
	defaultLogDir     = "~/.local/state/albumdeck"
	logFileName       = "albumdeck.log"
)

type fileConfig struct {
	APIBase string `toml:"api_base"`
	LogDir  string `toml:"log_dir"`
}

// Load reads the albumdeck config at path, or at the default location when
// path is blank. A missing file yields the defaults. Unknown keys are
// rejected so a misspelled api_base does not silently point at localhost.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{LogDir: stateDir()}

	data, err := os.ReadFile(resolved)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", resolved, err)
	}

	var raw fileConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("parse config %s: unknown keys:\n%s", resolved, strict.String())
		}
		return Config{}, fmt.Errorf("parse config %s: %w", resolved, err)
	}

	cfg.Path = resolved
	cfg.APIBase = strings.TrimSpace(raw.APIBase)
	if dir := strings.TrimSpace(raw.LogDir); dir != "" {
		cfg.LogDir = mustExpand(dir)
	}
	return cfg, nil
}

// LogPath is where albumdeck writes its log.
func (c Config) LogPath() string {
	dir := strings.TrimSpace(c.LogDir)
	if dir == "" {
		dir = stateDir()
	}
	return filepath.Join(dir, logFileName)
}

// stateDir prefers $XDG_STATE_HOME/albumdeck over the home-relative default.
func stateDir() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" && filepath.IsAbs(xdg) {
		return filepath.Join(xdg, "albumdeck")
	}
	return mustExpand(defaultLogDir)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultConfigPath
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// expandPath resolves a leading ~ and makes the result absolute.
func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, trimmed[1:])
	}
	return filepath.Abs(trimmed)
}
