// Package config loads the optional albumdeck configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/albumdeck/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing or empty, use defaults
//
// # Default Values
//
//   - Config file: ~/.config/albumdeck/config.toml
//   - Log directory: $XDG_STATE_HOME/albumdeck, else ~/.local/state/albumdeck
//   - Client log: <log_dir>/albumdeck.log
//
// # TOML Format
//
//	api_base = "http://localhost:8081"
//	log_dir = "~/.local/state/albumdeck"
//
// Both fields are optional. Tilde expansion is performed on log_dir and on
// the config path itself; relative paths become absolute.
//
// api_base is kept as written. The app package validates it and ranks it
// below the --api flag and above the persisted application URL.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML parse errors and unknown keys. A missing file is not
// an error; Config.Path is then empty.
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//		return fmt.Errorf("load config: %w", err)
//	}
//	logger, closeLog, err := logging.OpenFile(cfg.LogPath(), log.InfoLevel)
package config
