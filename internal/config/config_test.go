package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate points HOME at a fresh directory and clears XDG_STATE_HOME.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_STATE_HOME", "")
	return home
}

func writeTOML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_NoConfigLogsUnderStateDir(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIBase != "" || cfg.Path != "" {
		t.Fatalf("cfg = %+v, want no api_base and no path", cfg)
	}
	want := filepath.Join(home, ".local", "state", "albumdeck", "albumdeck.log")
	if got := cfg.LogPath(); got != want {
		t.Fatalf("LogPath() = %q, want %q", got, want)
	}
}

func TestLoad_HonoursXDGStateHome(t *testing.T) {
	isolate(t)
	xdg := t.TempDir()
	t.Setenv("XDG_STATE_HOME", xdg)

	cfg, err := Load(writeTOML(t, `api_base = "http://albums.lan:8081"`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := filepath.Join(xdg, "albumdeck"); cfg.LogDir != want {
		t.Fatalf("LogDir = %q, want %q", cfg.LogDir, want)
	}
}

func TestLoad_ApiBaseAndTildeLogDir(t *testing.T) {
	home := isolate(t)
	path := writeTOML(t, `
api_base = "  https://albums.example.com/  "
log_dir = " ~/logs/albumdeck "
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	// Validation and trailing-slash trimming happen in the app package.
	if cfg.APIBase != "https://albums.example.com/" {
		t.Fatalf("APIBase = %q", cfg.APIBase)
	}
	if want := filepath.Join(home, "logs", "albumdeck"); cfg.LogDir != want {
		t.Fatalf("LogDir = %q, want %q", cfg.LogDir, want)
	}
	if cfg.Path != path {
		t.Fatalf("Path = %q, want %q", cfg.Path, path)
	}
}

func TestLoad_BlankLogDirKeepsStateDir(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(writeTOML(t, "api_base = \"\"\nlog_dir = \"   \"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := filepath.Join(home, ".local", "state", "albumdeck"); cfg.LogDir != want {
		t.Fatalf("LogDir = %q, want %q", cfg.LogDir, want)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"misspelled key", `apibase = "http://albums.lan"`, "apibase"},
		{"broken toml", `api_base = [`, "parse config"},
		{"wrong type", `api_base = 8081`, "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := Load(writeTOML(t, tt.body))
			if err == nil {
				t.Fatalf("Load() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load() error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_UnreadableConfigIsAnError(t *testing.T) {
	isolate(t)

	// A directory cannot be read as a file.
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatalf("Load(dir) error = nil, want read error")
	}
}

func TestExpandPath(t *testing.T) {
	home := isolate(t)
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/.config/albumdeck/config.toml", filepath.Join(home, ".config", "albumdeck", "config.toml")},
		{"albumdeck.toml", filepath.Join(cwd, "albumdeck.toml")},
		{"~albums", filepath.Join(cwd, "~albums")},
	}
	for _, tt := range tests {
		got, err := expandPath(tt.in)
		if err != nil {
			t.Fatalf("expandPath(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath(blank) error = nil, want error")
	}
}

func TestLogPath_ZeroConfig(t *testing.T) {
	home := isolate(t)

	var cfg Config
	if want := filepath.Join(home, ".local", "state", "albumdeck", "albumdeck.log"); cfg.LogPath() != want {
		t.Fatalf("LogPath() = %q, want %q", cfg.LogPath(), want)
	}
}
