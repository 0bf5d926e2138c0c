package formatter

import (
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const dateLayout = "2006-01-02"

// RenderBox wraps content in a rounded-border box with an optional title.
// Plain output keeps the title and drops the border.
func RenderBox(title string, content string) string {
	if plain {
		if title == "" {
			return content
		}
		return strings.ToUpper(title) + "\n\n" + content
	}
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(1, 2)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// FormatDate renders a calendar date, or a dimmed "--" when unset.
func FormatDate(d *time.Time) string {
	if d == nil {
		return Dim("--")
	}
	return d.Format(dateLayout)
}

// FormatSpan renders "start → end", collapsing single-day spans.
func FormatSpan(start, end *time.Time) string {
	if start == nil || end == nil {
		return Dim("unscheduled")
	}
	if start.Equal(*end) {
		return start.Format("Mon ") + start.Format(dateLayout)
	}
	return start.Format("Mon ") + start.Format(dateLayout) + " → " + end.Format("Mon ") + end.Format(dateLayout)
}

// FormatHours renders hours without trailing zeros, e.g. "7.5h".
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64) + "h"
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatCapacity renders e.g. "8h × mon,tue,wed,thu,fri".
func FormatCapacity(c domain.WorkCapacity) string {
	return FormatHours(c.DailyWorkHours) + " × " + c.WorkDays.String()
}

// Drift compares a realized end with its estimate-only baseline and renders
// the slip in calendar days.
func Drift(t *domain.Task) string {
	if t.EndDate == nil || t.ExpectedEndDate == nil {
		return ""
	}
	days := int(t.EndDate.Sub(*t.ExpectedEndDate).Hours() / 24)
	switch {
	case days > 0:
		return StyleRed.Render("+" + strconv.Itoa(days) + "d")
	case days < 0:
		return StyleGreen.Render(strconv.Itoa(days) + "d")
	default:
		return Dim("on plan")
	}
}
