package scheduler

import (
	"time"

	"github.com/alexanderramin/workplan/internal/domain"
)

// FirstWorkingDayOnOrAfter returns date itself when it is a working day,
// otherwise the next working day. An empty set returns date unchanged.
func FirstWorkingDayOnOrAfter(date time.Time, days domain.WeekdaySet) time.Time {
	d := domain.DateOf(date)
	for i := 0; i < 7; i++ {
		if days.Has(d.Weekday()) {
			return d
		}
		d = d.AddDate(0, 0, 1)
	}
	return domain.DateOf(date)
}

// NextWorkingDay returns the first working day strictly after date.
// An empty set returns date unchanged.
func NextWorkingDay(date time.Time, days domain.WeekdaySet) time.Time {
	if days.IsEmpty() {
		return domain.DateOf(date)
	}
	return FirstWorkingDayOnOrAfter(domain.DateOf(date).AddDate(0, 0, 1), days)
}

// AddWorkingDays advances date by n working days. n <= 0 returns the date itself.
func AddWorkingDays(date time.Time, n int, days domain.WeekdaySet) time.Time {
	d := domain.DateOf(date)
	for i := 0; i < n; i++ {
		d = NextWorkingDay(d, days)
	}
	return d
}

// DependentStart is the earliest start of a finish-to-start successor: the
// predecessor end advanced by lagDays working days, then the following
// working day, so the two tasks never share a day.
func DependentStart(predecessorEnd time.Time, lagDays int, days domain.WeekdaySet) time.Time {
	return NextWorkingDay(AddWorkingDays(predecessorEnd, lagDays, days), days)
}
