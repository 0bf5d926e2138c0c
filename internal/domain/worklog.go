package domain

import "time"

type WorkLog struct {
	ID        string
	TaskID    string
	Hours     float64
	LoggedAt  time.Time
	Note      string
	CreatedAt time.Time
}
