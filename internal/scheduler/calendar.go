package scheduler

import (
	"fmt"
	"time"

	"github.com/alexanderramin/workplan/internal/domain"
)

// CalendarDay is one working day of an assignee's calendar.
type CalendarDay struct {
	Date         time.Time
	AvailableMin int
	UsedMin      int
}

func (d CalendarDay) AvailableHours() float64 { return domain.MinutesToHours(d.AvailableMin) }
func (d CalendarDay) UsedHours() float64      { return domain.MinutesToHours(d.UsedMin) }

// Calendar is an append-only arena of working days with a forward-only
// cursor. Every day before the cursor is either full or was skipped by an
// earlier allocation and is never handed out again, which keeps successive
// allocations in order and free of overlap.
//
// A Calendar belongs to a single recalculation of a single assignee.
type Calendar struct {
	capacity domain.WorkCapacity
	dailyMin int
	days     []CalendarDay
	cursor   int
}

// NewCalendar seeds a calendar at the first working day on or after start.
func NewCalendar(start time.Time, capacity domain.WorkCapacity) (*Calendar, error) {
	if err := capacity.Validate(); err != nil {
		return nil, err
	}
	c := &Calendar{
		capacity: capacity,
		dailyMin: capacity.DailyMinutes(),
	}
	c.days = append(c.days, c.newDay(FirstWorkingDayOnOrAfter(start, capacity.WorkDays)))
	return c, nil
}

func (c *Calendar) newDay(date time.Time) CalendarDay {
	return CalendarDay{Date: date, AvailableMin: c.dailyMin}
}

// extend appends the working day following the latest known day.
func (c *Calendar) extend() {
	last := c.days[len(c.days)-1].Date
	c.days = append(c.days, c.newDay(NextWorkingDay(last, c.capacity.WorkDays)))
}

// Capacity returns the work capacity the calendar was built from.
func (c *Calendar) Capacity() domain.WorkCapacity {
	return c.capacity
}

// Start returns the first day of the calendar.
func (c *Calendar) Start() time.Time {
	return c.days[0].Date
}

// EnsureDayAt returns the index of the first day on or after date, and not
// before the cursor, that still has capacity. Working days are appended
// until such a day exists.
func (c *Calendar) EnsureDayAt(date time.Time) int {
	date = domain.DateOf(date)
	for i := c.cursor; ; i++ {
		if i == len(c.days) {
			c.extend()
		}
		d := c.days[i]
		if d.AvailableMin > 0 && !d.Date.Before(date) {
			return i
		}
	}
}

// Day returns a copy of the day at index i.
func (c *Calendar) Day(i int) CalendarDay {
	return c.days[i]
}

// Days returns a copy of every day built so far.
func (c *Calendar) Days() []CalendarDay {
	out := make([]CalendarDay, len(c.days))
	copy(out, c.days)
	return out
}

// UsedMinutesOn reports how many minutes have been claimed on date.
func (c *Calendar) UsedMinutesOn(date time.Time) int {
	date = domain.DateOf(date)
	for _, d := range c.days {
		if d.Date.Equal(date) {
			return d.UsedMin
		}
	}
	return 0
}

func (c *Calendar) String() string {
	return fmt.Sprintf("calendar(%s..%s, %d days, cursor=%d)",
		c.days[0].Date.Format("2006-01-02"),
		c.days[len(c.days)-1].Date.Format("2006-01-02"),
		len(c.days), c.cursor)
}
