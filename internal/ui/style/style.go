// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Up      = "↑"
	Down    = "↓"
)

// Relation renders the marker used for a relation direction.
// Overrides point up at the base, overridden methods point down at the subclass.
func Relation(overrides bool) string {
	if overrides {
		return lipgloss.NewStyle().Foreground(Iris).Render(Up)
	}
	return lipgloss.NewStyle().Foreground(Green).Render(Down)
}
