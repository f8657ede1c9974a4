package scheduling

import "github.com/m04kA/SMC-StudioBooking/internal/domain"

// HasConflict reports whether a blocking reservation of staffID overlaps candidate.
func HasConflict(staffID int64, candidate domain.TimeRange, reservations []*domain.Reservation) bool {
	return FirstConflict(staffID, candidate, reservations) != nil
}

// FirstConflict returns the first blocking reservation of staffID that
// overlaps candidate, or nil. The slice is not modified.
func FirstConflict(staffID int64, candidate domain.TimeRange, reservations []*domain.Reservation) *domain.Reservation {
	for _, r := range reservations {
		if r == nil || !r.HasStaff(staffID) || !r.IsBlocking() {
			continue
		}
		if domain.Overlaps(r.TimeRange, candidate) {
			return r
		}
	}
	return nil
}
