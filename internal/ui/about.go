package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/albumdeck/internal/logtail"
	"github.com/five82/albumdeck/internal/router"
)

// logTailLines is how much of the log the about view keeps.
const logTailLines = 200

type logTailMsg struct {
	lines []string
	err   error
}

// aboutScreen shows build information and the end of the client log. The
// router builds it on first visit.
type aboutScreen struct {
	viewport viewport.Model
	lines    []string
	err      error
}

func newAboutScreen() *aboutScreen {
	return &aboutScreen{viewport: viewport.New(80, 10)}
}

func (s *aboutScreen) capturesInput() bool { return false }

func (s *aboutScreen) enter(e env, _ router.Match) tea.Cmd {
	return readLogTail(e.logPath)
}

func readLogTail(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, logTailLines)
		return logTailMsg{lines: lines, err: err}
	}
}

func (s *aboutScreen) refresh(e env) {
	s.viewport.Width = max(e.width-4, 20)
	s.viewport.Height = max(e.height-8, 3)
	s.render(e)
}

func (s *aboutScreen) render(e env) {
	if s.err != nil {
		s.viewport.SetContent(e.styles.DangerText.Render(s.err.Error()))
		return
	}
	if len(s.lines) == 0 {
		s.viewport.SetContent(e.styles.FaintText.Render("log is empty"))
		return
	}
	s.viewport.SetContent(strings.Join(logtail.ColorizeLines(s.lines, e.theme.LogStyles()), "\n"))
}

func (s *aboutScreen) update(e env, msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case logTailMsg:
		s.lines = msg.lines
		s.err = msg.err
		s.render(e)
		s.viewport.GotoBottom()
		return nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, e.keys.Refresh):
			return readLogTail(e.logPath)
		case key.Matches(msg, e.keys.Top):
			s.viewport.GotoTop()
			return nil
		case key.Matches(msg, e.keys.Bottom):
			s.viewport.GotoBottom()
			return nil
		}
	}
	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return cmd
}

func (s *aboutScreen) view(e env) string {
	styles := e.styles

	version := e.version
	if version == "" {
		version = "dev"
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render("About albumdeck"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Version ") + styles.Text.Render(version))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("API     ") + styles.AccentText.Render(e.baseURL))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Log     ") + styles.Text.Render(e.logPath))
	b.WriteString("\n\n")
	b.WriteString(s.viewport.View())

	return styles.Panel.Width(max(e.width-2, 20)).Render(b.String())
}
