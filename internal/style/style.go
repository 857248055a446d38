// Package style provides terminal styles for command output.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	// Bold is used for headers and summary lines.
	Bold = lipgloss.NewStyle().Bold(true)

	// Dim is used for secondary detail such as bullets and ids.
	Dim = lipgloss.NewStyle().Faint(true)

	// Success marks created items.
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// Warning marks skipped items.
	Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// Error marks failed items and aborts.
	Error = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Init disables color when noColor is set or NO_COLOR is present in the
// environment.
func Init(noColor bool) {
	if noColor || termenv.EnvNoColor() {
		DisableColor()
	}
}

// DisableColor renders every style as plain text.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
