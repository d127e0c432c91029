package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/albumdeck/internal/albums"
	"github.com/five82/albumdeck/internal/router"
)

const newAlbumPath = "/edit/new"

const (
	fieldTitle = iota
	fieldArtist
	fieldPrice
	fieldCount
)

// editorScreen edits one album, or creates one on /edit/new.
type editorScreen struct {
	id       int64
	creating bool
	loaded   bool
	original albums.Album
	inputs   [fieldCount]textinput.Model
	focus    int
	// invalid holds a local validation failure, such as an unparsable price.
	invalid string
}

func newEditorScreen() *editorScreen {
	s := &editorScreen{}
	placeholders := [fieldCount]string{"Title", "Artist", "Price"}
	for i := range s.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 256
		ti.Prompt = ""
		s.inputs[i] = ti
	}
	return s
}

func (s *editorScreen) capturesInput() bool { return true }

func (s *editorScreen) enter(e env, match router.Match) tea.Cmd {
	s.loaded = false
	s.invalid = ""
	s.focus = fieldTitle
	s.original = albums.Album{}
	for i := range s.inputs {
		s.inputs[i].SetValue("")
	}

	if match.Params["id"] == "new" {
		s.creating = true
		s.id = 0
		s.loaded = true
		return s.focusInput()
	}

	s.creating = false
	id, err := match.ID()
	if err != nil {
		s.invalid = err.Error()
		return nil
	}
	s.id = id
	s.refresh(e)
	if s.loaded || e.catalog == nil {
		return s.focusInput()
	}
	return tea.Batch(s.focusInput(), runOp("get", func() error {
		_, err := e.catalog.Get(e.ctx, id)
		return err
	}))
}

// refresh fills the inputs the first time the album shows up in the store.
func (s *editorScreen) refresh(e env) {
	if s.loaded || s.creating {
		return
	}
	for _, a := range e.snapshot.Albums {
		if a.ID == s.id {
			s.original = a
			s.inputs[fieldTitle].SetValue(a.Title)
			s.inputs[fieldArtist].SetValue(a.Artist)
			s.inputs[fieldPrice].SetValue(formatPrice(a.Price))
			s.loaded = true
			return
		}
	}
}

func (s *editorScreen) update(e env, msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if done, ok := msg.(opDoneMsg); ok && done.op == "create" && done.err == nil {
			return navigate("/albums")
		}
		var cmd tea.Cmd
		s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
		return cmd
	}

	keys := e.keys
	switch {
	case key.Matches(keyMsg, keys.Back):
		return goBack()
	case key.Matches(keyMsg, keys.Save):
		return s.save(e)
	case key.Matches(keyMsg, keys.NextField):
		s.focus = (s.focus + 1) % fieldCount
		return s.focusInput()
	case key.Matches(keyMsg, keys.PrevField):
		s.focus = (s.focus + fieldCount - 1) % fieldCount
		return s.focusInput()
	case key.Matches(keyMsg, keys.Confirm):
		if s.focus == fieldPrice {
			return s.save(e)
		}
		s.focus++
		return s.focusInput()
	}

	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(keyMsg)
	return cmd
}

func (s *editorScreen) focusInput() tea.Cmd {
	for i := range s.inputs {
		if i == s.focus {
			continue
		}
		s.inputs[i].Blur()
	}
	return s.inputs[s.focus].Focus()
}

func (s *editorScreen) save(e env) tea.Cmd {
	s.invalid = ""
	if !s.loaded {
		s.invalid = "album not loaded yet"
		return nil
	}
	title := strings.TrimSpace(s.inputs[fieldTitle].Value())
	artist := strings.TrimSpace(s.inputs[fieldArtist].Value())
	price, err := parsePrice(s.inputs[fieldPrice].Value())
	if err != nil {
		s.invalid = err.Error()
		return nil
	}
	if e.catalog == nil {
		return nil
	}

	if s.creating {
		if title == "" || artist == "" {
			s.invalid = "title and artist are required"
			return nil
		}
		input := albums.NewAlbum{Title: title, Artist: artist, Price: price}
		return runOp("create", func() error {
			_, err := e.catalog.Create(e.ctx, input)
			return err
		})
	}

	changes := s.changes(title, artist, price)
	if changes.Empty() {
		s.invalid = "nothing changed"
		return nil
	}
	id := s.id
	return runOp("update", func() error {
		return e.catalog.Update(e.ctx, id, changes)
	})
}

// changes holds only the fields that differ from the loaded album.
func (s *editorScreen) changes(title, artist string, price float32) albums.Changes {
	var c albums.Changes
	if title != s.original.Title {
		c.Title = &title
	}
	if artist != s.original.Artist {
		c.Artist = &artist
	}
	if price != s.original.Price {
		c.Price = &price
	}
	return c
}

func (s *editorScreen) view(e env) string {
	styles := e.styles

	heading := fmt.Sprintf("Edit album #%d", s.id)
	if s.creating {
		heading = "New album"
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(heading))
	b.WriteString("\n\n")

	if !s.loaded && s.invalid == "" {
		b.WriteString(styles.FaintText.Render("Loading album..."))
		return styles.Panel.Width(max(e.width-2, 20)).Render(b.String())
	}

	labels := [fieldCount]string{"Title", "Artist", "Price"}
	for i := range s.inputs {
		label := styles.MutedText.Width(8).Render(labels[i])
		box := styles.Panel
		if i == s.focus {
			box = styles.Focused
		}
		b.WriteString(label)
		b.WriteString(box.Width(max(e.width-16, 20)).Render(s.inputs[i].View()))
		b.WriteString("\n")
	}
	if s.invalid != "" {
		b.WriteString(styles.WarningText.Render("! " + s.invalid))
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render("tab next field · ctrl+s save · esc back"))

	return styles.Panel.Width(max(e.width-2, 20)).Render(b.String())
}

func formatPrice(p float32) string {
	return strconv.FormatFloat(float64(p), 'f', 2, 32)
}

func parsePrice(raw string) (float32, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "$")
	if trimmed == "" {
		return 0, fmt.Errorf("price is required")
	}
	f, err := strconv.ParseFloat(trimmed, 32)
	if err != nil {
		return 0, fmt.Errorf("price %q is not a number", raw)
	}
	if f < 0 {
		return 0, fmt.Errorf("price must not be negative")
	}
	return float32(f), nil
}
