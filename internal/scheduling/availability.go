// Package scheduling holds the pure decision functions of the booking engine.
// Nothing here performs I/O: callers load reservations and catalog records
// and pass snapshots in.
package scheduling

import (
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// IsOpen reports whether an entity accepts bookings on date.
// A blackout date always closes it. An empty working-hours map means the
// schedule is not configured and every weekday is open; otherwise a weekday
// missing from the map is closed.
func IsOpen(a domain.Availability, date time.Time) bool {
	return closedReason(a, date) == ""
}

// WithinWorkingHours reports whether window fits inside the open hours of the
// day it starts on.
func WithinWorkingHours(a domain.Availability, window domain.TimeRange) bool {
	if len(a.WorkingHours) == 0 {
		return true
	}
	schedule, ok := a.WorkingHours.For(window.Start().Weekday())
	if !ok {
		return false
	}
	hours, err := schedule.Range(window.Date())
	if err != nil {
		return false
	}
	return window.Within(hours)
}

// IsUnderCapacity reports whether the location can take one more booking on a
// day that already has existingCount non-cancelled reservations.
func IsUnderCapacity(loc *domain.Location, existingCount int) bool {
	if loc.MaxBookingsPerDay == nil {
		return true
	}
	return existingCount < *loc.MaxBookingsPerDay
}

// CheckLocation runs every location rule against window and returns a
// LocationUnavailableError naming the first one that fails.
func CheckLocation(loc *domain.Location, window domain.TimeRange, existingCount int) error {
	date := window.Date()

	if reason := closedReason(loc.Availability, date); reason != "" {
		return &domain.LocationUnavailableError{LocationID: loc.ID, Date: date, Reason: reason}
	}
	if !WithinWorkingHours(loc.Availability, window) {
		return &domain.LocationUnavailableError{LocationID: loc.ID, Date: date, Reason: domain.ReasonOutsideHours}
	}
	if !IsUnderCapacity(loc, existingCount) {
		return &domain.LocationUnavailableError{LocationID: loc.ID, Date: date, Reason: domain.ReasonCapacityReached}
	}
	return nil
}

func closedReason(a domain.Availability, date time.Time) domain.UnavailableReason {
	if a.IsBlackout(date) {
		return domain.ReasonBlackout
	}
	if len(a.WorkingHours) == 0 {
		return ""
	}
	if _, ok := a.WorkingHours.For(date.Weekday()); !ok {
		return domain.ReasonClosed
	}
	return ""
}
