package scheduler

import (
	"testing"
	"time"

	"github.com/alexanderramin/workplan/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDependentStart_Lag(t *testing.T) {
	monday := day(2025, 3, 10)
	assert.Equal(t, day(2025, 3, 13), DependentStart(monday, 2, domain.WeekdaysMonFri), "Monday + 2 working days, then next day = Thursday")
	assert.Equal(t, day(2025, 3, 11), DependentStart(monday, 0, domain.WeekdaysMonFri), "no same-day overlap")

	friday := day(2025, 3, 7)
	assert.Equal(t, day(2025, 3, 10), DependentStart(friday, 0, domain.WeekdaysMonFri))
	assert.Equal(t, day(2025, 3, 12), DependentStart(friday, 2, domain.WeekdaysMonFri))
}

func TestAddWorkingDays(t *testing.T) {
	assert.Equal(t, day(2025, 3, 10), AddWorkingDays(day(2025, 3, 7), 1, domain.WeekdaysMonFri))
	assert.Equal(t, day(2025, 3, 7), AddWorkingDays(day(2025, 3, 7), 0, domain.WeekdaysMonFri))

	tueThu := domain.NewWeekdaySet(time.Tuesday, time.Thursday)
	assert.Equal(t, day(2025, 3, 11), AddWorkingDays(day(2025, 3, 3), 3, tueThu))
}

func TestWorkingDays_EmptySetIsBounded(t *testing.T) {
	d := day(2025, 3, 3)
	assert.Equal(t, d, NextWorkingDay(d, 0))
	assert.Equal(t, d, FirstWorkingDayOnOrAfter(d, 0))
}
