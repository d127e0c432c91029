package ui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/albumdeck/internal/albums"
	"github.com/five82/albumdeck/internal/router"
	"github.com/five82/albumdeck/internal/state"
)

// screen is a routed view. Screens are built once by the router and keep
// their own state between visits.
type screen interface {
	// enter runs each time the route becomes current.
	enter(e env, match router.Match) tea.Cmd
	// refresh runs after the store snapshot or the window size changes.
	refresh(e env)
	update(e env, msg tea.Msg) tea.Cmd
	// capturesInput reports whether printable keys belong to the screen.
	capturesInput() bool
	view(e env) string
}

// env is what a screen may read while handling a message.
type env struct {
	ctx      context.Context
	catalog  albums.Catalog
	snapshot state.Snapshot
	theme    Theme
	styles   Styles
	keys     keyMap
	width    int
	height   int
	baseURL  string
	version  string
	logPath  string
}

// Messages

// storeMsg carries a store snapshot into the program.
type storeMsg state.Snapshot

// navigateMsg asks the model to switch route.
type navigateMsg struct {
	path string
	back bool
}

// opDoneMsg reports the end of a catalog operation.
type opDoneMsg struct {
	op  string
	err error
}

// Commands

func navigate(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path} }
}

func goBack() tea.Cmd {
	return func() tea.Msg { return navigateMsg{back: true} }
}

// runOp runs fn off the event loop and reports its outcome.
func runOp(op string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn()}
	}
}

// operationError returns the text the status bar shows for err. Rejections
// are already visible through the store errors.
func operationError(err error) string {
	if err == nil || errors.Is(err, albums.ErrRejected) || errors.Is(err, context.Canceled) {
		return ""
	}
	return err.Error()
}

// storeBridge forwards store snapshots to the program without blocking the
// store. Snapshots are whole states, so only the newest pending one is kept.
type storeBridge struct {
	mu      sync.Mutex
	latest  state.Snapshot
	pending bool
	wake    chan struct{}
}

func newStoreBridge() *storeBridge {
	return &storeBridge{wake: make(chan struct{}, 1)}
}

func (b *storeBridge) push(snap state.Snapshot) {
	b.mu.Lock()
	b.latest = snap
	b.pending = true
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// run delivers pending snapshots through send until ctx is done.
func (b *storeBridge) run(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.wake:
			b.mu.Lock()
			snap, ok := b.latest, b.pending
			b.pending = false
			b.mu.Unlock()
			if ok {
				send(storeMsg(snap))
			}
		}
	}
}
