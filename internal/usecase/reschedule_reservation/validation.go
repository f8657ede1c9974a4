package reschedule_reservation

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ReservationID <= 0 {
		return &domain.ValidationError{Field: "reservationId", Reason: domain.ReasonMustBePositive}
	}

	if req.Start.IsZero() {
		return &domain.ValidationError{Field: "startTime", Reason: domain.ReasonRequired}
	}

	if req.End != nil && !req.Start.Before(*req.End) {
		return &domain.ValidationError{Field: "endTime", Reason: domain.ReasonStartNotBeforeEnd}
	}

	if req.StaffID != nil && *req.StaffID <= 0 {
		return &domain.ValidationError{Field: "staffId", Reason: domain.ReasonMustBePositive}
	}

	return nil
}

// validateStart проверяет, что начало сеанса не в прошлом
func validateStart(start, now time.Time) error {
	if start.Before(now) {
		return &domain.ValidationError{Field: "startTime", Reason: domain.ReasonInPast}
	}
	return nil
}

// conflictReason метка причины конфликта для метрик
func conflictReason(err error) string {
	var (
		staffErr    *domain.StaffUnavailableError
		locationErr *domain.LocationUnavailableError
	)
	switch {
	case errors.As(err, &staffErr):
		return "staff_" + string(staffErr.Reason)
	case errors.As(err, &locationErr):
		return "location_" + string(locationErr.Reason)
	default:
		return "no_available_staff"
	}
}
