package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  lipgloss.Style
	StyleYellow lipgloss.Style
	StyleRed    lipgloss.Style
	StyleBlue   lipgloss.Style
	StylePurple lipgloss.Style
	StyleDim    lipgloss.Style
	StyleFg     lipgloss.Style
	StyleHeader lipgloss.Style
	StyleBold   lipgloss.Style

	plain bool
)

func init() { SetPlain(false) }

// SetPlain switches every style off, for pipes and NO_COLOR.
func SetPlain(on bool) {
	plain = on
	if on {
		s := lipgloss.NewStyle()
		StyleGreen, StyleYellow, StyleRed, StyleBlue, StylePurple = s, s, s, s, s
		StyleDim, StyleFg, StyleHeader, StyleBold = s, s, s, s
		return
	}
	StyleGreen = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
}

// IsPlain reports whether styling is off.
func IsPlain() bool { return plain }

// TaskStatusPill returns a colored status indicator such as "● in progress".
func TaskStatusPill(s domain.TaskStatus) string {
	label := strings.ReplaceAll(string(s), "_", " ")
	switch s {
	case domain.TaskTodo:
		return StyleBlue.Render("○ " + label)
	case domain.TaskInProgress:
		return StyleGreen.Render("● " + label)
	case domain.TaskInReview:
		return StylePurple.Render("◐ " + label)
	case domain.TaskCompleted:
		return StyleDim.Render("✔ " + label)
	default:
		return StyleDim.Render(label)
	}
}

func SprintStatusPill(s domain.SprintStatus) string {
	switch s {
	case domain.SprintActive:
		return StyleGreen.Render("● active")
	case domain.SprintCompleted:
		return StyleDim.Render("✔ completed")
	default:
		return StyleBlue.Render("○ " + string(s))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
