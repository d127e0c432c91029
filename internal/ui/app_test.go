package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/albumdeck/internal/albums"
	"github.com/five82/albumdeck/internal/prefs"
	"github.com/five82/albumdeck/internal/router"
	"github.com/five82/albumdeck/internal/state"
)

type fakeCatalog struct {
	mu      sync.Mutex
	calls   []string
	created albums.NewAlbum
	changes albums.Changes
	err     error
}

func (f *fakeCatalog) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeCatalog) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeCatalog) List(context.Context) ([]albums.Album, error) {
	return nil, f.record("list")
}

func (f *fakeCatalog) Get(_ context.Context, id int64) (albums.Album, error) {
	return albums.Album{}, f.record(fmt.Sprintf("get %d", id))
}

func (f *fakeCatalog) ByArtist(_ context.Context, name string) ([]albums.Album, error) {
	return nil, f.record("artist " + name)
}

func (f *fakeCatalog) Create(_ context.Context, input albums.NewAlbum) (albums.Album, error) {
	f.mu.Lock()
	f.created = input
	f.mu.Unlock()
	return albums.Album{}, f.record("create")
}

func (f *fakeCatalog) Update(_ context.Context, id int64, changes albums.Changes) error {
	f.mu.Lock()
	f.changes = changes
	f.mu.Unlock()
	return f.record(fmt.Sprintf("update %d", id))
}

func (f *fakeCatalog) Delete(_ context.Context, id int64) error {
	return f.record(fmt.Sprintf("delete %d", id))
}

func (f *fakeCatalog) Random(context.Context) (albums.Album, error) {
	return albums.Album{}, f.record("random")
}

func sampleStore() *state.Store {
	store := state.New()
	store.SetAlbums([]state.Album{
		{ID: 1, Title: "Blue Train", Artist: "John Coltrane", Price: 56.99},
		{ID: 2, Title: "Jeru", Artist: "Gerry Mulligan", Price: 17.99},
	})
	return store
}

func newTestModel(t *testing.T, opts Options) (Model, *fakeCatalog) {
	t.Helper()
	catalog := &fakeCatalog{}
	if opts.Catalog == nil {
		opts.Catalog = catalog
	}
	m, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, catalog
}

// send feeds msg to m and returns the updated model.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model
}

// sendCmd feeds msg to m and returns the updated model and command.
func sendCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// findMsg runs cmd, unpacking batches, and returns the first message of
// type T.
func findMsg[T any](cmd tea.Cmd) (T, bool) {
	var zero T
	if cmd == nil {
		return zero, false
	}
	switch msg := cmd().(type) {
	case T:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if found, ok := findMsg[T](c); ok {
				return found, true
			}
		}
	}
	return zero, false
}

func TestNewStartsOnHomeWithAboutUnbuilt(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	if m.match.Route.Name != router.Home {
		t.Fatalf("start route = %q, want %q", m.match.Route.Name, router.Home)
	}
	if m.routes.Loaded(router.About) {
		t.Fatalf("about view built before first visit")
	}

	m = send(t, m, navigateMsg{path: "/about"})
	if m.match.Route.Name != router.About {
		t.Fatalf("route = %q, want about", m.match.Route.Name)
	}
	if !m.routes.Loaded(router.About) {
		t.Fatalf("about view not built after visit")
	}
}

func TestNewRejectsUnknownStartPath(t *testing.T) {
	if _, err := New(Options{StartPath: "/nowhere"}); !errors.Is(err, router.ErrNotFound) {
		t.Fatalf("New() error = %v, want ErrNotFound", err)
	}
}

func TestNavigateHistory(t *testing.T) {
	m, _ := newTestModel(t, Options{Store: sampleStore()})

	m = send(t, m, navigateMsg{path: "/albums"})
	m = send(t, m, navigateMsg{path: "/edit/1"})
	if m.match.Path != "/edit/1" {
		t.Fatalf("path = %q, want /edit/1", m.match.Path)
	}

	m = send(t, m, navigateMsg{back: true})
	if m.match.Path != "/albums" {
		t.Fatalf("after back path = %q, want /albums", m.match.Path)
	}
	m = send(t, m, navigateMsg{back: true})
	if m.match.Path != "/" {
		t.Fatalf("after second back path = %q, want /", m.match.Path)
	}
	m = send(t, m, navigateMsg{back: true})
	if m.match.Path != "/" {
		t.Fatalf("back with empty history moved to %q", m.match.Path)
	}
}

func TestNavigateUnknownPathShowsError(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	m = send(t, m, navigateMsg{path: "/missing"})
	if m.match.Route.Name != router.Home {
		t.Fatalf("route changed to %q on unknown path", m.match.Route.Name)
	}
	if !strings.Contains(m.opErr, "/missing") {
		t.Fatalf("opErr = %q, want mention of /missing", m.opErr)
	}
}

func TestRouteKeysNavigate(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	_, cmd := sendCmd(t, m, keyRunes("2"))
	msg, ok := findMsg[navigateMsg](cmd)
	if !ok || msg.path != "/albums" {
		t.Fatalf("key 2 produced %+v, want navigate to /albums", msg)
	}
}

func TestAlbumsEnterLoadsList(t *testing.T) {
	m, catalog := newTestModel(t, Options{Store: sampleStore()})

	_, cmd := sendCmd(t, m, navigateMsg{path: "/albums"})
	done, ok := findMsg[opDoneMsg](cmd)
	if !ok || done.op != "list" {
		t.Fatalf("entering /albums produced %+v, want list op", done)
	}
	if calls := catalog.Calls(); len(calls) != 1 || calls[0] != "list" {
		t.Fatalf("calls = %v, want [list]", calls)
	}
}

func TestAlbumsKeysIssueOperations(t *testing.T) {
	m, catalog := newTestModel(t, Options{Store: sampleStore()})
	m = send(t, m, navigateMsg{path: "/albums"})

	m = send(t, m, keyRunes("j"))

	_, cmd := sendCmd(t, m, keyRunes("d"))
	if done, ok := findMsg[opDoneMsg](cmd); !ok || done.op != "delete" {
		t.Fatalf("d produced %+v, want delete op", done)
	}
	_, cmd = sendCmd(t, m, keyRunes("n"))
	if done, ok := findMsg[opDoneMsg](cmd); !ok || done.op != "random" {
		t.Fatalf("n produced %+v, want random op", done)
	}

	calls := catalog.Calls()
	want := []string{"delete 2", "random"}
	if len(calls) != len(want) || calls[0] != want[0] || calls[1] != want[1] {
		t.Fatalf("calls = %v, want %v", calls, want)
	}

	_, cmd = sendCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if nav, ok := findMsg[navigateMsg](cmd); !ok || nav.path != "/edit/2" {
		t.Fatalf("enter produced %+v, want navigate to /edit/2", nav)
	}
	_, cmd = sendCmd(t, m, keyRunes("c"))
	if nav, ok := findMsg[navigateMsg](cmd); !ok || nav.path != newAlbumPath {
		t.Fatalf("c produced %+v, want navigate to %s", nav, newAlbumPath)
	}
}

func TestAlbumsSearchCapturesKeys(t *testing.T) {
	m, catalog := newTestModel(t, Options{Store: sampleStore()})
	m = send(t, m, navigateMsg{path: "/albums"})

	m = send(t, m, keyRunes("/"))
	if !m.current.capturesInput() {
		t.Fatalf("search did not capture input")
	}

	// q would quit outside the search box.
	m, cmd := sendCmd(t, m, keyRunes("q"))
	if _, quit := findMsg[tea.QuitMsg](cmd); quit {
		t.Fatalf("q quit while searching")
	}

	_, cmd = sendCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if done, ok := findMsg[opDoneMsg](cmd); !ok || done.op != "search" {
		t.Fatalf("enter produced %+v, want search op", done)
	}
	calls := catalog.Calls()
	if last := calls[len(calls)-1]; last != "artist q" {
		t.Fatalf("last call = %q, want %q", last, "artist q")
	}
}

func TestEditorSendsOnlyChangedFields(t *testing.T) {
	m, catalog := newTestModel(t, Options{Store: sampleStore()})
	m = send(t, m, navigateMsg{path: "/edit/1"})

	editor := m.current.(*editorScreen)
	if !editor.loaded {
		t.Fatalf("editor did not load album 1 from the store")
	}
	if got := editor.inputs[fieldPrice].Value(); got != "56.99" {
		t.Fatalf("price input = %q, want 56.99", got)
	}
	editor.inputs[fieldTitle].SetValue("Blue Train (Remastered)")

	_, cmd := sendCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if done, ok := findMsg[opDoneMsg](cmd); !ok || done.op != "update" {
		t.Fatalf("ctrl+s produced %+v, want update op", done)
	}

	catalog.mu.Lock()
	changes := catalog.changes
	catalog.mu.Unlock()
	if changes.Title == nil || *changes.Title != "Blue Train (Remastered)" {
		t.Fatalf("changes.Title = %v, want new title", changes.Title)
	}
	if changes.Artist != nil || changes.Price != nil {
		t.Fatalf("unchanged fields were sent: %+v", changes)
	}
}

func TestEditorFetchesMissingAlbum(t *testing.T) {
	m, catalog := newTestModel(t, Options{Store: state.New()})

	_, cmd := sendCmd(t, m, navigateMsg{path: "/edit/7"})
	if done, ok := findMsg[opDoneMsg](cmd); !ok || done.op != "get" {
		t.Fatalf("entering /edit/7 produced %+v, want get op", done)
	}
	if calls := catalog.Calls(); len(calls) != 1 || calls[0] != "get 7" {
		t.Fatalf("calls = %v, want [get 7]", calls)
	}
}

func TestEditorUnchangedDoesNotSave(t *testing.T) {
	m, catalog := newTestModel(t, Options{Store: sampleStore()})
	m = send(t, m, navigateMsg{path: "/edit/2"})

	_, cmd := sendCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if _, ok := findMsg[opDoneMsg](cmd); ok {
		t.Fatalf("save with no changes issued an operation")
	}
	if editor := m.current.(*editorScreen); editor.invalid != "nothing changed" {
		t.Fatalf("invalid = %q, want %q", editor.invalid, "nothing changed")
	}
	if calls := catalog.Calls(); len(calls) != 0 {
		t.Fatalf("calls = %v, want none", calls)
	}
}

func TestEditorCreate(t *testing.T) {
	m, catalog := newTestModel(t, Options{Store: sampleStore()})
	m = send(t, m, navigateMsg{path: "/albums"})
	m = send(t, m, navigateMsg{path: newAlbumPath})

	editor := m.current.(*editorScreen)
	if !editor.creating {
		t.Fatalf("editor not in create mode on %s", newAlbumPath)
	}
	editor.inputs[fieldTitle].SetValue("Kind of Blue")
	editor.inputs[fieldArtist].SetValue("Miles Davis")
	editor.inputs[fieldPrice].SetValue("$24.50")

	m, cmd := sendCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	done, ok := findMsg[opDoneMsg](cmd)
	if !ok || done.op != "create" {
		t.Fatalf("ctrl+s produced %+v, want create op", done)
	}

	catalog.mu.Lock()
	created := catalog.created
	catalog.mu.Unlock()
	want := albums.NewAlbum{Title: "Kind of Blue", Artist: "Miles Davis", Price: 24.5}
	if created != want {
		t.Fatalf("created = %+v, want %+v", created, want)
	}

	_, cmd = sendCmd(t, m, done)
	if nav, ok := findMsg[navigateMsg](cmd); !ok || nav.path != "/albums" {
		t.Fatalf("finished create produced %+v, want navigate to /albums", nav)
	}
}

func TestEditorCreateRequiresTitleAndArtist(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = send(t, m, navigateMsg{path: newAlbumPath})

	editor := m.current.(*editorScreen)
	editor.inputs[fieldPrice].SetValue("10")

	_, cmd := sendCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if _, ok := findMsg[opDoneMsg](cmd); ok {
		t.Fatalf("create without title issued an operation")
	}
	if editor.invalid != "title and artist are required" {
		t.Fatalf("invalid = %q", editor.invalid)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    float32
		wantErr bool
	}{
		{in: "17.99", want: 17.99},
		{in: " $56.99 ", want: 56.99},
		{in: "0", want: 0},
		{in: "", wantErr: true},
		{in: "cheap", wantErr: true},
		{in: "-1", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parsePrice(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parsePrice(%q) error = nil, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parsePrice(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("parsePrice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRenderStatus(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	m.snapshot = state.Snapshot{Albums: make([]state.Album, 3)}
	if got := m.renderStatus(); !strings.Contains(got, "3 albums") {
		t.Fatalf("idle status = %q, want album count", got)
	}

	m.snapshot = state.Snapshot{Errors: []string{"album not found"}, Messages: []string{"album successfully removed"}}
	got := m.renderStatus()
	if !strings.Contains(got, "✗ album not found") {
		t.Fatalf("status = %q, want error", got)
	}
	if !strings.Contains(got, "✓ album successfully removed") {
		t.Fatalf("status = %q, want message", got)
	}

	m.snapshot = state.Snapshot{WaitingOnAjax: true}
	if got := m.renderStatus(); !strings.Contains(got, "Working...") {
		t.Fatalf("busy status = %q, want Working...", got)
	}
}

func TestOpDoneSurfacesTransportErrors(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	m = send(t, m, opDoneMsg{op: "list", err: errors.New("connection refused")})
	if m.opErr != "connection refused" {
		t.Fatalf("opErr = %q, want transport error", m.opErr)
	}

	rejected := fmt.Errorf("GET albums/9: %w: album not found", albums.ErrRejected)
	m = send(t, m, opDoneMsg{op: "get", err: rejected})
	if m.opErr != "" {
		t.Fatalf("opErr = %q, want rejections left to the store", m.opErr)
	}
}

func TestAlbumsViewRendersStore(t *testing.T) {
	m, _ := newTestModel(t, Options{Store: sampleStore(), BaseURL: "http://localhost:8080/"})
	m = send(t, m, navigateMsg{path: "/albums"})

	out := m.View()
	for _, want := range []string{"Blue Train", "Gerry Mulligan", "$17.99", "http://localhost:8080/"} {
		if !strings.Contains(out, want) {
			t.Fatalf("View() missing %q:\n%s", want, out)
		}
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	m = send(t, m, keyRunes("?"))
	if !m.showHelp {
		t.Fatalf("? did not open help")
	}
	if out := m.View(); !strings.Contains(out, "Keyboard Shortcuts") {
		t.Fatalf("help view = %q", out)
	}
	m = send(t, m, keyRunes("x"))
	if m.showHelp {
		t.Fatalf("any key did not close help")
	}
}

func TestCycleThemePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	m, _ := newTestModel(t, Options{PrefsPath: path})

	m, cmd := sendCmd(t, m, keyRunes("T"))
	if m.theme.Name != "Slate" {
		t.Fatalf("theme = %q, want Slate", m.theme.Name)
	}
	done, ok := findMsg[opDoneMsg](cmd)
	if !ok || done.err != nil {
		t.Fatalf("save theme = %+v", done)
	}

	saved, err := prefs.Load(path)
	if err != nil {
		t.Fatalf("prefs.Load() error = %v", err)
	}
	if saved.Theme != "Slate" {
		t.Fatalf("saved theme = %q, want Slate", saved.Theme)
	}
}

func TestStoreBridgeKeepsNewestSnapshot(t *testing.T) {
	bridge := newStoreBridge()
	for i := 1; i <= 3; i++ {
		bridge.push(state.Snapshot{Albums: make([]state.Album, i)})
	}

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan tea.Msg, 4)
	done := make(chan struct{})
	go func() {
		bridge.run(ctx, func(msg tea.Msg) { got <- msg })
		close(done)
	}()

	select {
	case msg := <-got:
		snap, ok := msg.(storeMsg)
		if !ok {
			t.Fatalf("bridge sent %T, want storeMsg", msg)
		}
		if n := len(snap.Albums); n != 3 {
			t.Fatalf("bridge sent snapshot with %d albums, want 3", n)
		}
	case <-time.After(time.Second):
		t.Fatalf("bridge sent nothing")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("bridge did not stop after cancel")
	}
	if len(got) != 0 {
		t.Fatalf("bridge sent %d extra snapshots", len(got))
	}
}

func TestStoreMsgRefreshesSnapshot(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	m = send(t, m, storeMsg(state.Snapshot{Albums: make([]state.Album, 2)}))
	if len(m.snapshot.Albums) != 2 {
		t.Fatalf("snapshot albums = %d, want 2", len(m.snapshot.Albums))
	}
}
