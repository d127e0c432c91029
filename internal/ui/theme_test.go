package ui

import "testing"

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Dracula" || names[1] != "Slate" || names[2] != "Nightfox" {
		t.Fatalf("ThemeNames() = %v, want [Dracula Slate Nightfox]", names)
	}

	names[0] = "Mutated"
	if ThemeNames()[0] != "Dracula" {
		t.Fatalf("ThemeNames() exposes its backing slice")
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Dracula"); got != "Slate" {
		t.Fatalf("NextTheme(Dracula) = %q, want Slate", got)
	}
	if got := NextTheme("Nightfox"); got != "Dracula" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Dracula", got)
	}
	if got := NextTheme("Unknown"); got != "Dracula" {
		t.Fatalf("NextTheme(Unknown) = %q, want Dracula", got)
	}
}

func TestGetTheme(t *testing.T) {
	for _, name := range ThemeNames() {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%s).Name = %q", name, got)
		}
	}
	if got := GetTheme("Unknown").Name; got != "Dracula" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Dracula (fallback)", got)
	}
}

func TestThemesDefineEveryColor(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		colors := []string{
			th.Background, th.Surface, th.SurfaceAlt, th.SelectionBg, th.SelectionText,
			th.Border, th.BorderFocus, th.Text, th.Muted, th.Faint,
			th.Accent, th.Success, th.Warning, th.Danger, th.Info,
		}
		for i, c := range colors {
			if c == "" {
				t.Fatalf("theme %s color %d is empty", name, i)
			}
		}
	}
}
