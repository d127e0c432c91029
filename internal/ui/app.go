package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/five82/albumdeck/internal/albums"
	"github.com/five82/albumdeck/internal/prefs"
	"github.com/five82/albumdeck/internal/router"
	"github.com/five82/albumdeck/internal/state"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Catalog   albums.Catalog
	Store     *state.Store
	Logger    *log.Logger
	ThemeName string
	PrefsPath string
	BaseURL   string
	Version   string
	LogPath   string
	// StartPath is the first route shown. Defaults to "/".
	StartPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	catalog   albums.Catalog
	store     *state.Store
	logger    *log.Logger
	prefsPath string
	baseURL   string
	version   string
	logPath   string

	// Routing
	routes  *router.Router[screen]
	current screen
	match   router.Match
	history []string

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	width    int
	height   int
	ready    bool
	showHelp bool

	// Data state
	snapshot state.Snapshot
	opErr    string
}

// New creates a new Bubble Tea model positioned on opts.StartPath.
func New(opts Options) (Model, error) {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = defaultTheme().Name
	}

	routes, err := router.New(map[router.Name]func() screen{
		router.Home:   func() screen { return newHomeScreen() },
		router.Albums: func() screen { return newAlbumsScreen() },
		router.Edit:   func() screen { return newEditorScreen() },
		router.About:  func() screen { return newAboutScreen() },
	})
	if err != nil {
		return Model{}, err
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := Model{
		ctx:       ctx,
		catalog:   opts.Catalog,
		store:     opts.Store,
		logger:    logger,
		prefsPath: opts.PrefsPath,
		baseURL:   opts.BaseURL,
		version:   opts.Version,
		logPath:   opts.LogPath,
		routes:    routes,
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   spin,
	}
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
	}

	start := opts.StartPath
	if start == "" {
		start = "/"
	}
	view, match, err := routes.Resolve(start)
	if err != nil {
		return Model{}, err
	}
	m.current = view
	m.match = match
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.current.enter(m.env(), m.match),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.current.refresh(m.env())
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case storeMsg:
		m.snapshot = state.Snapshot(msg)
		m.current.refresh(m.env())
		return m, nil

	case navigateMsg:
		return m.navigate(msg)

	case opDoneMsg:
		m.opErr = operationError(msg.err)
		if msg.err != nil {
			m.logger.Debug("operation failed", "op", msg.op, "err", msg.err)
		}
		m.syncSnapshot()
		return m, m.current.update(m.env(), msg)
	}

	return m, m.current.update(m.env(), msg)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.current.view(m.env()))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// handleKey processes keyboard input. While a screen captures input only
// ctrl+c is handled here.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.current.capturesInput() {
		return m, m.current.update(m.env(), msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		return m, m.cycleTheme()
	case key.Matches(msg, m.keys.GoHome):
		return m, navigate("/")
	case key.Matches(msg, m.keys.GoAlbums):
		return m, navigate("/albums")
	case key.Matches(msg, m.keys.GoAbout):
		return m, navigate("/about")
	case key.Matches(msg, m.keys.Back):
		return m, goBack()
	}

	return m, m.current.update(m.env(), msg)
}

// navigate switches route. Forward moves push the current path; back pops.
func (m Model) navigate(msg navigateMsg) (tea.Model, tea.Cmd) {
	path := msg.path
	if msg.back {
		if len(m.history) == 0 {
			return m, nil
		}
		path = m.history[len(m.history)-1]
		m.history = m.history[:len(m.history)-1]
	}

	view, match, err := m.routes.Resolve(path)
	if err != nil {
		m.opErr = err.Error()
		return m, nil
	}
	if !msg.back && match.Path != m.match.Path {
		m.history = append(m.history, m.match.Path)
	}
	m.current = view
	m.match = match
	m.opErr = ""
	m.logger.Debug("navigate", "route", match.Route.Name, "path", match.Path)

	e := m.env()
	cmd := view.enter(e, match)
	view.refresh(e)
	return m, cmd
}

func (m *Model) cycleTheme() tea.Cmd {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.current.refresh(m.env())
	if m.prefsPath == "" {
		return nil
	}
	name := m.theme.Name
	path := m.prefsPath
	return runOp("save theme", func() error {
		_, err := prefs.Update(path, func(p *prefs.Prefs) { p.Theme = name })
		return err
	})
}

func (m *Model) syncSnapshot() {
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
	}
	m.current.refresh(m.env())
}

func (m Model) env() env {
	return env{
		ctx:      m.ctx,
		catalog:  m.catalog,
		snapshot: m.snapshot,
		theme:    m.theme,
		styles:   m.theme.Styles(),
		keys:     m.keys,
		width:    m.width,
		height:   m.contentHeight(),
		baseURL:  m.baseURL,
		version:  m.version,
		logPath:  m.logPath,
	}
}

// contentHeight is the height left for the routed view.
func (m Model) contentHeight() int {
	return max(m.height-4, 3)
}

// renderHeader renders the logo, the route tabs and the base URL.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	var tabs []string
	for _, r := range router.Routes() {
		label := strings.ToUpper(string(r.Name[:1])) + string(r.Name[1:])
		if r.Name == m.match.Route.Name {
			tabs = append(tabs, styles.Selected.Padding(0, 1).Render(label))
		} else {
			tabs = append(tabs, styles.MutedText.Padding(0, 1).Render(label))
		}
	}

	left := styles.Logo.Render("albumdeck") + "  " + strings.Join(tabs, "")
	right := styles.FaintText.Render(m.baseURL)
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return styles.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// renderStatus renders the in-flight spinner, store errors and messages.
func (m Model) renderStatus() string {
	styles := m.theme.Styles()

	var parts []string
	if m.snapshot.WaitingOnAjax {
		parts = append(parts, styles.InfoText.Render(m.spinner.View()+" Working..."))
	}
	for _, e := range m.snapshot.Errors {
		parts = append(parts, styles.DangerText.Render("✗ "+e))
	}
	if m.opErr != "" {
		parts = append(parts, styles.DangerText.Render("✗ "+m.opErr))
	}
	for _, msg := range m.snapshot.Messages {
		parts = append(parts, styles.SuccessText.Render("✓ "+msg))
	}
	if len(parts) == 0 {
		parts = append(parts, styles.MutedText.Render(fmt.Sprintf("%d albums", len(m.snapshot.Albums))))
	}
	return styles.Footer.Width(m.width).Render(strings.Join(parts, "  "))
}

// Run starts the Bubble Tea program and forwards store changes into it.
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	if opts.Store != nil {
		bridge := newStoreBridge()
		unsubscribe := opts.Store.Subscribe(bridge.push)
		defer unsubscribe()

		ctx, cancel := context.WithCancel(m.ctx)
		defer cancel()
		go bridge.run(ctx, p.Send)
	}

	_, err = p.Run()
	return err
}
