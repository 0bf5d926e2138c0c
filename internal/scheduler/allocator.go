package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/workplan/internal/domain"
)

// DayUse is the portion of one calendar day claimed by an allocation.
type DayUse struct {
	Date    time.Time
	Minutes int
}

// Allocation is the concrete span consumed for one task.
type Allocation struct {
	Start   time.Time
	End     time.Time
	Minutes int
	Days    []DayUse
}

// Hours returns the allocated quantity in hours.
func (a Allocation) Hours() float64 {
	return domain.MinutesToHours(a.Minutes)
}

// Allocate packs hours into the calendar starting at the first available day
// on or after notBefore, splitting across consecutive working days. Capacity is
// consumed, so later calls only see what is left.
//
// A zero quantity returns start == end == the next available day and consumes nothing.
func (c *Calendar) Allocate(hours float64, notBefore time.Time) (Allocation, error) {
	minutes, err := allocationMinutes(hours)
	if err != nil {
		return Allocation{}, err
	}
	return c.allocate(minutes, notBefore, true), nil
}

// Peek computes what Allocate would return without consuming capacity.
func (c *Calendar) Peek(hours float64, notBefore time.Time) (Allocation, error) {
	minutes, err := allocationMinutes(hours)
	if err != nil {
		return Allocation{}, err
	}
	return c.allocate(minutes, notBefore, false), nil
}

func allocationMinutes(hours float64) (int, error) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return 0, fmt.Errorf("cannot allocate %v hours: %w", hours, domain.ErrInvalidInput)
	}
	if hours > domain.MaxTaskHours {
		return 0, fmt.Errorf("cannot allocate %v hours, the limit is %d: %w", hours, domain.MaxTaskHours, domain.ErrInvalidInput)
	}
	return domain.HoursToMinutes(hours), nil
}

func (c *Calendar) allocate(minutes int, notBefore time.Time, commit bool) Allocation {
	i := c.EnsureDayAt(notBefore)
	alloc := Allocation{Start: c.days[i].Date, End: c.days[i].Date}
	if minutes == 0 {
		if commit {
			c.cursor = i
		}
		return alloc
	}

	remaining := minutes
	for {
		day := &c.days[i]
		take := min(remaining, day.AvailableMin)
		if commit {
			day.AvailableMin -= take
			day.UsedMin += take
		}
		alloc.Days = append(alloc.Days, DayUse{Date: day.Date, Minutes: take})
		alloc.Minutes += take
		alloc.End = day.Date
		remaining -= take
		if remaining == 0 {
			break
		}
		// Days after the first one touched are untouched by earlier
		// allocations, so the next index always has capacity.
		i++
		if i == len(c.days) {
			c.extend()
		}
	}

	if commit {
		if c.days[i].AvailableMin > 0 {
			c.cursor = i
		} else {
			c.cursor = i + 1
		}
	}
	return alloc
}
