package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/albumdeck/internal/router"
)

// albumsScreen lists the stored albums.
type albumsScreen struct {
	selected  int
	searching bool
	search    textinput.Model
	// filter is the artist the list was last narrowed to.
	filter string
}

func newAlbumsScreen() *albumsScreen {
	ti := textinput.New()
	ti.Placeholder = "artist name"
	ti.Prompt = "/ "
	ti.CharLimit = 128
	return &albumsScreen{search: ti}
}

func (a *albumsScreen) enter(e env, _ router.Match) tea.Cmd {
	a.searching = false
	a.search.Blur()
	if a.filter != "" {
		return a.searchArtist(e, a.filter)
	}
	return a.reload(e)
}

func (a *albumsScreen) refresh(e env) {
	a.clamp(len(e.snapshot.Albums))
}

func (a *albumsScreen) capturesInput() bool { return a.searching }

func (a *albumsScreen) update(e env, msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if a.searching {
			var cmd tea.Cmd
			a.search, cmd = a.search.Update(msg)
			return cmd
		}
		return nil
	}
	if a.searching {
		return a.updateSearch(e, keyMsg)
	}

	items := e.snapshot.Albums
	keys := e.keys
	switch {
	case key.Matches(keyMsg, keys.Up):
		if a.selected > 0 {
			a.selected--
		}
	case key.Matches(keyMsg, keys.Down):
		if a.selected < len(items)-1 {
			a.selected++
		}
	case key.Matches(keyMsg, keys.Top):
		a.selected = 0
	case key.Matches(keyMsg, keys.Bottom):
		a.selected = max(len(items)-1, 0)
	case key.Matches(keyMsg, keys.Refresh):
		a.filter = ""
		return a.reload(e)
	case key.Matches(keyMsg, keys.Random):
		return runOp("random", func() error {
			_, err := e.catalog.Random(e.ctx)
			return err
		})
	case key.Matches(keyMsg, keys.Delete):
		if len(items) == 0 {
			return nil
		}
		id := items[a.selected].ID
		return runOp("delete", func() error {
			return e.catalog.Delete(e.ctx, id)
		})
	case key.Matches(keyMsg, keys.Edit):
		if len(items) == 0 {
			return nil
		}
		return navigate(router.EditPath(items[a.selected].ID))
	case key.Matches(keyMsg, keys.Create):
		return navigate(newAlbumPath)
	case key.Matches(keyMsg, keys.Search):
		a.searching = true
		a.search.SetValue(a.filter)
		a.search.CursorEnd()
		return a.search.Focus()
	}
	return nil
}

func (a *albumsScreen) updateSearch(e env, msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		a.searching = false
		a.search.Blur()
		return nil
	case tea.KeyEnter:
		a.searching = false
		a.search.Blur()
		name := strings.TrimSpace(a.search.Value())
		a.filter = name
		a.selected = 0
		if name == "" {
			return a.reload(e)
		}
		return a.searchArtist(e, name)
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	return cmd
}

func (a *albumsScreen) reload(e env) tea.Cmd {
	if e.catalog == nil {
		return nil
	}
	return runOp("list", func() error {
		_, err := e.catalog.List(e.ctx)
		return err
	})
}

func (a *albumsScreen) searchArtist(e env, name string) tea.Cmd {
	if e.catalog == nil {
		return nil
	}
	return runOp("search", func() error {
		_, err := e.catalog.ByArtist(e.ctx, name)
		return err
	})
}

func (a *albumsScreen) clamp(n int) {
	if a.selected >= n {
		a.selected = n - 1
	}
	if a.selected < 0 {
		a.selected = 0
	}
}

func (a *albumsScreen) view(e env) string {
	styles := e.styles
	items := e.snapshot.Albums

	heading := styles.Title.Render("Albums")
	if a.filter != "" {
		heading += styles.MutedText.Render(fmt.Sprintf("  artist ~ %q", a.filter))
	}

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	if a.searching {
		b.WriteString(a.search.View())
	}
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString(styles.FaintText.Render("No albums. Press r to reload or n to add a random one."))
		return styles.Panel.Width(max(e.width-2, 20)).Render(b.String())
	}

	width := max(e.width-6, 40)
	titleW := width * 2 / 5
	artistW := width - titleW - 18
	row := func(id, title, artist, price string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(6).Render(id),
			lipgloss.NewStyle().Width(titleW).Render(truncate(title, titleW-1)),
			lipgloss.NewStyle().Width(artistW).Render(truncate(artist, artistW-1)),
			lipgloss.NewStyle().Width(10).Align(lipgloss.Right).Render(price),
		)
	}

	b.WriteString(styles.MutedText.Render(row("ID", "Title", "Artist", "Price")))
	b.WriteString("\n")

	visible := max(e.height-5, 1)
	start := 0
	if a.selected >= visible {
		start = a.selected - visible + 1
	}
	end := min(start+visible, len(items))
	for i := start; i < end; i++ {
		album := items[i]
		line := row(
			fmt.Sprintf("%d", album.ID),
			album.Title,
			album.Artist,
			fmt.Sprintf("$%.2f", album.Price),
		)
		if i == a.selected {
			b.WriteString(styles.Selected.Render(line))
		} else {
			b.WriteString(styles.Text.Render(line))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return styles.Panel.Width(max(e.width-2, 20)).Render(b.String())
}

// truncate shortens s to width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
