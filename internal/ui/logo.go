package ui

import (
	"os/exec"
	"strings"
)

// createLogo renders the albumdeck banner with figlet when it is installed
// and falls back to plain text.
func createLogo() string {
	cmd := exec.Command("figlet", "-f", "slant", "albumdeck")
	output, err := cmd.Output()
	if err == nil && len(output) > 0 {
		return trimBlankLines(string(output))
	}
	return "ALBUMDECK"
}

func trimBlankLines(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " "))
	}
	return strings.Join(kept, "\n")
}
