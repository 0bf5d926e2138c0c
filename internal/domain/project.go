package domain

import (
	"fmt"
	"regexp"
	"time"
)

var shortIDPattern = regexp.MustCompile(`^[A-Z]{2,6}[0-9]{0,4}$`)

type Project struct {
	ID        string
	ShortID   string
	Name      string
	TeamID    *string
	StartDate *time.Time

	// ActualExpectedEndDate is maintained by the scheduling engine and is
	// never written from user input.
	ActualExpectedEndDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateShortID checks that ShortID is non-empty and matches the required
// format: 2-6 uppercase letters optionally followed by up to 4 digits (e.g. WEB, APP01).
func (p *Project) ValidateShortID() error {
	if p.ShortID == "" {
		return fmt.Errorf("short ID is required (use --id flag): %w", ErrInvalidInput)
	}
	if !shortIDPattern.MatchString(p.ShortID) {
		return fmt.Errorf("short ID %q must be 2-6 uppercase letters followed by up to 4 digits (e.g. APP01): %w", p.ShortID, ErrInvalidInput)
	}
	return nil
}

// DisplayID returns the best short identifier for display.
// It prefers ShortID; if empty it truncates ID to 8 characters.
func (p *Project) DisplayID() string {
	if p.ShortID != "" {
		return p.ShortID
	}
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}

// ScheduleAnchor returns the date calendars for this project start from:
// the project start date when set, otherwise now.
func (p *Project) ScheduleAnchor(now time.Time) time.Time {
	if p.StartDate != nil {
		return DateOf(*p.StartDate)
	}
	return DateOf(now)
}
