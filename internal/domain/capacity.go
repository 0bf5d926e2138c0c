package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// WeekdaySet is a set of weekdays keyed by time.Weekday (Sunday = 0).
type WeekdaySet uint8

// WeekdaysMonFri is the conventional Monday-to-Friday work week.
const WeekdaysMonFri WeekdaySet = 1<<time.Monday | 1<<time.Tuesday | 1<<time.Wednesday | 1<<time.Thursday | 1<<time.Friday

// NewWeekdaySet builds a set from the given weekdays.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.Add(d)
	}
	return s
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

func (s WeekdaySet) Add(d time.Weekday) WeekdaySet {
	if d < time.Sunday || d > time.Saturday {
		return s
	}
	return s | 1<<uint(d)
}

func (s WeekdaySet) Len() int {
	n := 0
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			n++
		}
	}
	return n
}

func (s WeekdaySet) IsEmpty() bool {
	return s&0x7f == 0
}

// Weekdays lists members in Sunday-first order.
func (s WeekdaySet) Weekdays() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// String renders the set as comma-separated short names, Monday first.
func (s WeekdaySet) String() string {
	var names []string
	for i := 1; i <= 7; i++ {
		d := time.Weekday(i % 7)
		if s.Has(d) {
			names = append(names, weekdayShort[d])
		}
	}
	return strings.Join(names, ",")
}

var weekdayShort = map[time.Weekday]string{
	time.Sunday:    "sun",
	time.Monday:    "mon",
	time.Tuesday:   "tue",
	time.Wednesday: "wed",
	time.Thursday:  "thu",
	time.Friday:    "fri",
	time.Saturday:  "sat",
}

// ParseWeekdaySet accepts comma-separated day names ("mon,tue") or weekday
// numbers with Sunday = 0 ("1,2,3,4,5"). An empty string yields an empty set.
func ParseWeekdaySet(v string) (WeekdaySet, error) {
	var s WeekdaySet
	for _, part := range strings.Split(v, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			if n < 0 || n > 6 {
				return 0, fmt.Errorf("weekday number %d out of range 0-6: %w", n, ErrInvalidInput)
			}
			s = s.Add(time.Weekday(n))
			continue
		}
		found := false
		for d, name := range weekdayShort {
			if strings.HasPrefix(part, name) {
				s = s.Add(d)
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown weekday %q: %w", part, ErrInvalidInput)
		}
	}
	return s, nil
}

const (
	// MaxTaskHours bounds estimated, actual and logged hours of one task.
	MaxTaskHours = 10_000
	// MaxDailyWorkHours bounds a member's daily capacity.
	MaxDailyWorkHours = 24
)

// WorkCapacity describes how much an assignee can work per day and on which weekdays.
type WorkCapacity struct {
	DailyWorkHours float64
	WorkDays       WeekdaySet
}

// Validate rejects capacities that cannot place any hours; allocating
// against them would never terminate.
func (c WorkCapacity) Validate() error {
	if c.DailyWorkHours <= 0 || math.IsNaN(c.DailyWorkHours) || math.IsInf(c.DailyWorkHours, 0) {
		return fmt.Errorf("daily work hours must be positive, got %v: %w", c.DailyWorkHours, ErrInvalidCapacity)
	}
	if c.DailyWorkHours > MaxDailyWorkHours {
		return fmt.Errorf("daily work hours must be at most %d, got %v: %w", MaxDailyWorkHours, c.DailyWorkHours, ErrInvalidCapacity)
	}
	if c.WorkDays.IsEmpty() {
		return fmt.Errorf("no working days configured: %w", ErrInvalidCapacity)
	}
	if c.DailyMinutes() <= 0 {
		return fmt.Errorf("daily work hours %v round to zero minutes: %w", c.DailyWorkHours, ErrInvalidCapacity)
	}
	return nil
}

// DailyMinutes returns the daily capacity in whole minutes.
func (c WorkCapacity) DailyMinutes() int {
	return HoursToMinutes(c.DailyWorkHours)
}

// IsWorkingDay reports whether date falls on one of the configured weekdays.
func (c WorkCapacity) IsWorkingDay(date time.Time) bool {
	return c.WorkDays.Has(date.Weekday())
}

// HoursToMinutes converts decimal hours to whole minutes. Quantities above
// MaxTaskHours saturate there; callers reject them before converting.
func HoursToMinutes(h float64) int {
	if h <= 0 || math.IsNaN(h) {
		return 0
	}
	if h > MaxTaskHours {
		h = MaxTaskHours
	}
	return int(math.Round(h * 60))
}

// MinutesToHours converts whole minutes back to decimal hours.
func MinutesToHours(m int) float64 {
	return float64(m) / 60
}
