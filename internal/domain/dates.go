package domain

import "time"

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DatePtr returns a pointer to the UTC calendar date of t.
func DatePtr(t time.Time) *time.Time {
	d := DateOf(t)
	return &d
}

// SameDatePtr reports whether two optional dates are both nil or equal.
func SameDatePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
