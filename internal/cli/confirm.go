package cli

import (
	"fmt"

	"github.com/alexanderramin/workplan/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func workplanHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func huhConfirm(title string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(workplanHuhTheme()).WithShowHelp(false)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}

// confirm gates destructive commands. --yes skips the prompt; without a
// terminal the command refuses to guess.
func (a *App) confirm(title string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if a.IsInteractive == nil || !a.IsInteractive() {
		return false, fmt.Errorf("%s: rerun with --yes to confirm", title)
	}
	if a.Confirm != nil {
		return a.Confirm(title)
	}
	return huhConfirm(title)
}
