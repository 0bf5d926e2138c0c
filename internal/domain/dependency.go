package domain

// TaskDependency is a directed edge: TaskID depends on DependsOnID.
type TaskDependency struct {
	TaskID      string
	DependsOnID string
	Type        DependencyType
	LagDays     int
}

// Drives reports whether the edge has a computed scheduling effect.
func (d TaskDependency) Drives() bool {
	return d.Type == FinishToStart
}
