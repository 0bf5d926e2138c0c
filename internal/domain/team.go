package domain

import "time"

type Team struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// TeamMember binds a user to a team together with the user's work
// capacity inside that team.
type TeamMember struct {
	TeamID      string
	UserID      string
	DisplayName string
	Capacity    WorkCapacity
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
