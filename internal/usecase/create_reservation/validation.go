package create_reservation

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.PackageID <= 0 {
		return &domain.ValidationError{Field: "packageId", Reason: domain.ReasonMustBePositive}
	}

	if req.Start.IsZero() {
		return &domain.ValidationError{Field: "startTime", Reason: domain.ReasonRequired}
	}

	if req.End != nil && !req.Start.Before(*req.End) {
		return &domain.ValidationError{Field: "endTime", Reason: domain.ReasonStartNotBeforeEnd}
	}

	if req.LocationID != nil && *req.LocationID <= 0 {
		return &domain.ValidationError{Field: "locationId", Reason: domain.ReasonMustBePositive}
	}

	if req.StaffID != nil && *req.StaffID <= 0 {
		return &domain.ValidationError{Field: "staffId", Reason: domain.ReasonMustBePositive}
	}

	if err := validateCustomer(req.Customer); err != nil {
		return err
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return &domain.ValidationError{Field: "notes", Reason: domain.ReasonTooLong}
	}

	if req.TotalAmount != nil && req.TotalAmount.IsNegative() {
		return &domain.ValidationError{Field: "totalAmount", Reason: domain.ReasonInvalidValue}
	}

	return nil
}

// validateCustomer проверяет контактные данные клиента
func validateCustomer(c domain.Customer) error {
	fields := []struct {
		name     string
		value    string
		required bool
	}{
		{"customerName", c.Name, true},
		{"customerEmail", c.Email, true},
		{"customerPhone", c.Phone, false},
	}

	for _, f := range fields {
		if f.required && f.value == "" {
			return &domain.ValidationError{Field: f.name, Reason: domain.ReasonRequired}
		}
		if len(f.value) > domain.MaxCustomerFieldLength {
			return &domain.ValidationError{Field: f.name, Reason: domain.ReasonTooLong}
		}
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
