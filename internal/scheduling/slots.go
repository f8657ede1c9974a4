package scheduling

import (
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// DaySlots lays out consecutive windows of the given length across the open
// hours of date, starting at opening time and advancing by length. Windows
// that would run past closing time are dropped, as are windows starting
// before notBefore. A closed or blacked-out date yields no windows; an
// unconfigured schedule spans the whole calendar day.
func DaySlots(a domain.Availability, date time.Time, length time.Duration, notBefore time.Time) []domain.TimeRange {
	if length <= 0 || !IsOpen(a, date) {
		return nil
	}

	hours := domain.DayOf(date)
	if len(a.WorkingHours) > 0 {
		schedule, _ := a.WorkingHours.For(date.Weekday())
		r, err := schedule.Range(date)
		if err != nil {
			return nil
		}
		hours = r
	}

	slots := make([]domain.TimeRange, 0)
	for start := hours.Start(); !start.Add(length).After(hours.End()); start = start.Add(length) {
		if start.Before(notBefore) {
			continue
		}
		slot, err := domain.RangeFrom(start, length)
		if err != nil {
			break
		}
		slots = append(slots, slot)
	}

	return slots
}
