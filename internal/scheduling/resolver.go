package scheduling

import (
	"sort"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// StaffQuery is the input of ResolveStaff.
type StaffQuery struct {
	Window     domain.TimeRange
	LocationID *int64

	// Requested is the explicitly chosen staff member. When nil, Pool is searched.
	Requested *domain.Staff
	Pool      []*domain.Staff

	// Reservations must hold every blocking reservation of the staff involved
	// that may overlap Window.
	Reservations []*domain.Reservation
}

// Candidates returns the active staff eligible for locationID, in ascending id
// order. With no location every active staff member is eligible.
func Candidates(pool []*domain.Staff, locationID *int64) []*domain.Staff {
	out := make([]*domain.Staff, 0, len(pool))
	for _, s := range pool {
		if s == nil || !s.IsActive {
			continue
		}
		if locationID != nil && !s.WorksAt(*locationID) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// StaffRejection returns why s cannot take window, or "" when it can.
func StaffRejection(s *domain.Staff, locationID *int64, window domain.TimeRange, reservations []*domain.Reservation) domain.UnavailableReason {
	if locationID != nil && !s.WorksAt(*locationID) {
		return domain.ReasonNotAtLocation
	}
	if reason := closedReason(s.Availability, window.Date()); reason != "" {
		return reason
	}
	if !WithinWorkingHours(s.Availability, window) {
		return domain.ReasonOutsideHours
	}
	if HasConflict(s.ID, window, reservations) {
		return domain.ReasonBusy
	}
	return ""
}

// ResolveStaff picks the staff member for a booking.
//
// An explicit request is checked alone and fails with StaffUnavailableError
// (or InactiveEntityError for a disabled member). Otherwise candidates are
// tried in ascending id order and the first one that passes wins; when none
// does the result is NoAvailableStaffError.
func ResolveStaff(q StaffQuery) (*domain.Staff, error) {
	if q.Requested != nil {
		s := q.Requested
		if !s.IsActive {
			return nil, &domain.InactiveEntityError{Entity: domain.EntityStaff, ID: s.ID}
		}
		if reason := StaffRejection(s, q.LocationID, q.Window, q.Reservations); reason != "" {
			return nil, &domain.StaffUnavailableError{
				StaffID:   s.ID,
				StaffName: s.Name,
				Window:    q.Window,
				Reason:    reason,
			}
		}
		return s, nil
	}

	candidates := Candidates(q.Pool, q.LocationID)
	for _, s := range candidates {
		if StaffRejection(s, q.LocationID, q.Window, q.Reservations) == "" {
			return s, nil
		}
	}

	return nil, &domain.NoAvailableStaffError{
		LocationID: q.LocationID,
		Window:     q.Window,
		Candidates: len(candidates),
	}
}

// AvailableStaff returns every candidate that could take the window.
func AvailableStaff(q StaffQuery) []*domain.Staff {
	var out []*domain.Staff
	for _, s := range Candidates(q.Pool, q.LocationID) {
		if StaffRejection(s, q.LocationID, q.Window, q.Reservations) == "" {
			out = append(out, s)
		}
	}
	return out
}
