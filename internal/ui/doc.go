// Package ui provides the Bubble Tea terminal interface for albumdeck.
//
// The interface is a set of routed screens resolved through the router
// package: a home screen, the album list, an album editor and an about
// screen that is only built when first visited. Screens read the shared
// state.Store through snapshots and act through an albums.Catalog, so every
// mutation goes through the request client and lands back in the store.
//
// Store changes reach the program through a bridge that keeps only the
// newest snapshot, so a store mutation never waits on the event loop.
//
// # Key Bindings
//
//   - 1, 2, 3: Home, Albums, About
//   - j/k, g/G: Move the selection
//   - r: Reload albums
//   - n: Add a random album
//   - d: Delete the selected album
//   - enter or e: Edit the selected album
//   - c: Create an album
//   - /: Filter by artist
//   - ctrl+s: Save in the editor
//   - esc: Back
//   - T: Cycle theme
//   - ?: Help
//   - q or ctrl+c: Quit
package ui
