package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/workplan/internal/domain"
)

func FormatProjectList(projects []*domain.Project) string {
	headers := []string{"ID", "NAME", "START", "EXPECTED END"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.DisplayID(),
			Bold(p.Name),
			FormatDate(p.StartDate),
			FormatDate(p.ActualExpectedEndDate),
		})
	}
	return RenderBox("Projects", RenderTable(headers, rows))
}

// ProjectDetail is everything "project show" renders.
type ProjectDetail struct {
	Project *domain.Project
	Team    *domain.Team
	Members []*domain.TeamMember
	Sprints []*domain.Sprint
	Tasks   []*domain.Task
}

func FormatProjectDetail(d ProjectDetail) string {
	var b strings.Builder
	p := d.Project

	b.WriteString(Bold(p.Name) + "  " + Dim("["+p.DisplayID()+"]") + "\n")
	team := Dim("none")
	if d.Team != nil {
		team = d.Team.Name
	}
	fmt.Fprintf(&b, "Team:          %s\n", team)
	fmt.Fprintf(&b, "Start:         %s\n", FormatDate(p.StartDate))
	fmt.Fprintf(&b, "Expected end:  %s\n", FormatDate(p.ActualExpectedEndDate))

	var scheduled, backlog int
	var estimate, actual float64
	for _, t := range d.Tasks {
		if t.IsBacklog {
			backlog++
			continue
		}
		scheduled++
		estimate += t.EstimatedHours
		actual += t.ActualHours
	}
	fmt.Fprintf(&b, "Tasks:         %d scheduled, %d in backlog\n", scheduled, backlog)
	fmt.Fprintf(&b, "Hours:         %s estimated, %s logged\n", FormatHours(estimate), FormatHours(actual))

	if len(d.Members) > 0 {
		b.WriteString("\n" + Header("Members") + "\n")
		b.WriteString(FormatMemberTable(d.Members))
	}
	if len(d.Sprints) > 0 {
		b.WriteString("\n" + Header("Sprints") + "\n")
		b.WriteString(FormatSprintTable(d.Sprints))
	}
	return RenderBox("Project", strings.TrimRight(b.String(), "\n"))
}

// FormatSchedule renders every assignee's calendar in placement order.
func FormatSchedule(p *domain.Project, tasks []*domain.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s ends %s\n", Bold(p.DisplayID()), FormatDate(p.ActualExpectedEndDate))

	groups, order := groupByAssignee(tasks)
	if len(order) == 0 {
		b.WriteString("\n" + Dim("Nothing scheduled."))
		return RenderBox("Schedule", b.String())
	}
	headers := []string{"#", "TASK", "STATUS", "HOURS", "SPAN", "BASELINE END", "DRIFT"}
	for _, assignee := range order {
		b.WriteString("\n" + Header(assignee) + "\n")
		rows := make([][]string, 0, len(groups[assignee]))
		for _, t := range groups[assignee] {
			rows = append(rows, []string{
				fmt.Sprint(t.OrderValue()),
				t.Title,
				TaskStatusPill(t.Status),
				FormatHours(t.HoursToOccupy()),
				FormatSpan(t.StartDate, t.EndDate),
				FormatDate(t.ExpectedEndDate),
				Drift(t),
			})
		}
		b.WriteString(RenderTable(headers, rows))
	}
	return RenderBox("Schedule", strings.TrimRight(b.String(), "\n"))
}

func groupByAssignee(tasks []*domain.Task) (map[string][]*domain.Task, []string) {
	groups := make(map[string][]*domain.Task)
	var order []string
	for _, t := range tasks {
		if !t.IsScheduled() {
			continue
		}
		if _, ok := groups[t.AssigneeID]; !ok {
			order = append(order, t.AssigneeID)
		}
		groups[t.AssigneeID] = append(groups[t.AssigneeID], t)
	}
	return groups, order
}
