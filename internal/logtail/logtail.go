package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed log line.
type Entry struct {
	Time    string
	Level   string
	Message string
}

// linePattern matches the charmbracelet/log text formatter with timestamps.
var linePattern = regexp.MustCompile(`^(\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}) (DEBU|INFO|WARN|ERRO|FATA) (.*)$`)

// Parse splits a log line into its parts. ok is false for lines that are not
// in the logger's format, such as wrapped continuation lines.
func Parse(line string) (Entry, bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false
	}
	return Entry{Time: m[1], Level: m[2], Message: m[3]}, true
}

// Styles colours the parts of a log line.
type Styles struct {
	Time   lipgloss.Style
	Debug  lipgloss.Style
	Info   lipgloss.Style
	Warn   lipgloss.Style
	Error  lipgloss.Style
	Detail lipgloss.Style
}

func (s Styles) level(name string) lipgloss.Style {
	switch name {
	case "DEBU":
		return s.Debug
	case "WARN":
		return s.Warn
	case "ERRO", "FATA":
		return s.Error
	default:
		return s.Info
	}
}

// ColorizeLine renders line with styles. Unparsed non-blank lines use the
// detail style.
func ColorizeLine(line string, styles Styles) string {
	if strings.TrimSpace(line) == "" {
		return line
	}
	entry, ok := Parse(line)
	if !ok {
		return styles.Detail.Render(line)
	}
	return styles.Time.Render(entry.Time) + " " +
		styles.level(entry.Level).Render(entry.Level) + " " +
		entry.Message
}

// ColorizeLines applies ColorizeLine to each line.
func ColorizeLines(lines []string, styles Styles) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = ColorizeLine(line, styles)
	}
	return out
}
