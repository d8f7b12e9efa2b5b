// Package viz holds terminal styling for the CLI output.
package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Panel wraps a block of summary text in a rounded border.
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888899"))

	Value = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00ccff")).
		Bold(true)

	StatusOK = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))
)

// Summary renders a titled key/value panel.
func Summary(title string, rows [][2]string) string {
	var b strings.Builder
	b.WriteString(Title.Render(title))
	b.WriteString("\n\n")
	width := 0
	for _, row := range rows {
		if len(row[0]) > width {
			width = len(row[0])
		}
	}
	for _, row := range rows {
		pad := strings.Repeat(" ", width-len(row[0]))
		fmt.Fprintf(&b, "%s%s  %s\n", Label.Render(row[0]), pad, Value.Render(row[1]))
	}
	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}
