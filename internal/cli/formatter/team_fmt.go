package formatter

import (
	"fmt"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/alexanderramin/workplan/internal/service"
)

func FormatTeamList(teams []*domain.Team) string {
	rows := make([][]string, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, []string{TruncID(t.ID), Bold(t.Name)})
	}
	return RenderBox("Teams", RenderTable([]string{"ID", "NAME"}, rows))
}

func FormatMemberTable(members []*domain.TeamMember) string {
	rows := make([][]string, 0, len(members))
	for _, m := range members {
		rows = append(rows, []string{m.UserID, m.DisplayName, FormatCapacity(m.Capacity)})
	}
	return RenderTable([]string{"USER", "NAME", "CAPACITY"}, rows)
}

func FormatSprintTable(sprints []*domain.Sprint) string {
	rows := make([][]string, 0, len(sprints))
	for _, s := range sprints {
		rows = append(rows, []string{fmt.Sprint(s.Position), TruncID(s.ID), s.Name, SprintStatusPill(s.Status)})
	}
	return RenderTable([]string{"POS", "ID", "NAME", "STATUS"}, rows)
}

// FormatDependencyList renders edges using task titles where known.
func FormatDependencyList(deps []domain.TaskDependency, titles map[string]string) string {
	name := func(id string) string {
		if t, ok := titles[id]; ok {
			return t + " " + TruncID(id)
		}
		return TruncID(id)
	}
	rows := make([][]string, 0, len(deps))
	for _, d := range deps {
		effect := Dim("informational")
		if d.Drives() {
			effect = StyleGreen.Render("drives schedule")
		}
		rows = append(rows, []string{name(d.TaskID), name(d.DependsOnID), string(d.Type), fmt.Sprintf("%dd", d.LagDays), effect})
	}
	return RenderBox("Dependencies", RenderTable([]string{"TASK", "DEPENDS ON", "TYPE", "LAG", "EFFECT"}, rows))
}

func FormatImportResult(r *service.ImportResult) string {
	body := fmt.Sprintf("Project %s (%s) for team %s\n%d members, %d sprints, %d tasks, %d dependencies\nExpected end: %s",
		Bold(r.Project.ShortID), r.Project.Name, r.Team.Name,
		r.MemberCount, r.SprintCount, r.TaskCount, r.DependencyCount,
		FormatDate(r.Project.ActualExpectedEndDate))
	return RenderBox("Imported", body)
}

// FormatRecalc summarizes a project recalculation.
func FormatRecalc(s *service.ProjectSchedule) string {
	changed := 0
	for _, a := range s.Assignees {
		changed += len(a.Changed)
	}
	return fmt.Sprintf("Recalculated %d assignees, %d tasks moved. Expected end: %s",
		len(s.Assignees), changed, FormatDate(s.ProjectEnd))
}
