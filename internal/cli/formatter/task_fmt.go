package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/workplan/internal/domain"
)

// FormatTaskList renders tasks with their sprint names. sprintNames maps
// sprint ID to name.
func FormatTaskList(tasks []*domain.Task, sprintNames map[string]string) string {
	headers := []string{"ID", "ASSIGNEE", "#", "TITLE", "STATUS", "EST", "ACT", "START", "END", "SPRINT"}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		order := Dim("backlog")
		if !t.IsBacklog {
			order = fmt.Sprint(t.OrderValue())
		}
		sprint := Dim("--")
		if t.SprintID != nil {
			if name, ok := sprintNames[*t.SprintID]; ok {
				sprint = name
			} else {
				sprint = TruncID(*t.SprintID)
			}
		}
		rows = append(rows, []string{
			TruncID(t.ID),
			t.AssigneeID,
			order,
			t.Title,
			TaskStatusPill(t.Status),
			FormatHours(t.EstimatedHours),
			FormatHours(t.ActualHours),
			FormatDate(t.StartDate),
			FormatDate(t.EndDate),
			sprint,
		})
	}
	return RenderBox("Tasks", RenderTable(headers, rows))
}

func FormatTaskDetail(t *domain.Task, logs []*domain.WorkLog) string {
	var b strings.Builder
	b.WriteString(Bold(t.Title) + "  " + Dim(t.ID) + "\n")
	if t.Description != "" {
		b.WriteString(t.Description + "\n")
	}
	fmt.Fprintf(&b, "\nAssignee:   %s\n", t.AssigneeID)
	fmt.Fprintf(&b, "Status:     %s\n", TaskStatusPill(t.Status))
	fmt.Fprintf(&b, "Hours:      %s estimated, %s logged\n", FormatHours(t.EstimatedHours), FormatHours(t.ActualHours))
	if t.IsBacklog {
		b.WriteString("Schedule:   " + Dim("in backlog") + "\n")
	} else {
		fmt.Fprintf(&b, "Order:      %d\n", t.OrderValue())
		fmt.Fprintf(&b, "Schedule:   %s\n", FormatSpan(t.StartDate, t.EndDate))
		fmt.Fprintf(&b, "Baseline:   %s  %s\n", FormatSpan(t.ExpectedStartDate, t.ExpectedEndDate), Drift(t))
	}

	if len(logs) > 0 {
		b.WriteString("\n" + Header("Work log") + "\n")
		rows := make([][]string, 0, len(logs))
		for _, l := range logs {
			rows = append(rows, []string{l.LoggedAt.Format("2006-01-02 15:04"), FormatHours(l.Hours), l.Note})
		}
		b.WriteString(RenderTable([]string{"WHEN", "HOURS", "NOTE"}, rows))
	}
	return RenderBox("Task", strings.TrimRight(b.String(), "\n"))
}
