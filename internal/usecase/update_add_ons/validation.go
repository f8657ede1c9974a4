package update_add_ons

import (
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ReservationID <= 0 {
		return &domain.ValidationError{Field: "reservationId", Reason: domain.ReasonMustBePositive}
	}

	if req.TotalAmount != nil && req.TotalAmount.IsNegative() {
		return &domain.ValidationError{Field: "totalAmount", Reason: domain.ReasonInvalidValue}
	}

	return nil
}
