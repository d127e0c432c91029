package ui

import (
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/albumdeck/internal/router"
)

type homeScreen struct {
	logoOnce sync.Once
	logo     string
}

func newHomeScreen() *homeScreen {
	return &homeScreen{}
}

func (h *homeScreen) enter(env, router.Match) tea.Cmd { return nil }

func (h *homeScreen) refresh(env) {}

func (h *homeScreen) update(env, tea.Msg) tea.Cmd { return nil }

func (h *homeScreen) capturesInput() bool { return false }

func (h *homeScreen) view(e env) string {
	h.logoOnce.Do(func() { h.logo = createLogo() })
	styles := e.styles

	var b strings.Builder
	b.WriteString(styles.Logo.Render(h.logo))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render("A terminal front end for the albums API."))
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("API     ") + styles.AccentText.Render(e.baseURL))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Loaded  ") + styles.Text.Render(fmt.Sprintf("%d albums", len(e.snapshot.Albums))))
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("Press 2 to browse albums, 3 for about, ? for help."))

	return styles.Panel.Width(max(e.width-2, 20)).Height(e.height - 2).Render(b.String())
}
