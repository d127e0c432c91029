// Package app is the composition root for albumdeck.
//
// Open wires the pieces in a fixed order:
//
//  1. config.Load reads ~/.config/albumdeck/config.toml (api_base, log_dir)
//  2. logging.OpenFile opens <log_dir>/albumdeck.log, since the TUI owns the terminal
//  3. env.Load reads APPLICATION_PROTOCOL, APPLICATION_URL and APPLICATION_PORT,
//     filling unset keys from the --env-file dotenv file
//  4. env.EnsureApplicationURL persists the composed origin on first run
//  5. ResolveBaseURL picks the origin: --api, then api_base, then the
//     persisted value, then request.DefaultBaseURL
//  6. state.New, request.NewFactory and albums.NewService share one store
//
// Run then hands the session to ui.Run and blocks until the user quits or the
// context is cancelled. The call and mock-server commands reuse Open without
// the UI.
package app
