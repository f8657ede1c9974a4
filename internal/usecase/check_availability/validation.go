package check_availability

import (
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.PackageID <= 0 {
		return &domain.ValidationError{Field: "packageId", Reason: domain.ReasonMustBePositive}
	}

	if req.Start == nil && req.Date == nil {
		return &domain.ValidationError{Field: "startTime", Reason: domain.ReasonRequired}
	}

	if req.Start != nil && req.Date != nil {
		return &domain.ValidationError{Field: "date", Reason: domain.ReasonInvalidValue}
	}

	// сетка на день строится по рабочим часам локации
	if req.Date != nil && req.LocationID == nil {
		return &domain.ValidationError{Field: "locationId", Reason: domain.ReasonRequired}
	}

	if req.Start != nil && req.End != nil && !req.Start.Before(*req.End) {
		return &domain.ValidationError{Field: "endTime", Reason: domain.ReasonStartNotBeforeEnd}
	}

	if req.LocationID != nil && *req.LocationID <= 0 {
		return &domain.ValidationError{Field: "locationId", Reason: domain.ReasonMustBePositive}
	}

	if req.StaffID != nil && *req.StaffID <= 0 {
		return &domain.ValidationError{Field: "staffId", Reason: domain.ReasonMustBePositive}
	}

	return nil
}
