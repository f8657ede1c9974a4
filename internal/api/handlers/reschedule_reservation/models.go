package reschedule_reservation

import (
	"time"

	rescheduleReservation "github.com/m04kA/SMC-StudioBooking/internal/usecase/reschedule_reservation"
)

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	StartTime time.Time  `json:"startTime" validate:"required"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	StaffID   *int64     `json:"staffId,omitempty" validate:"omitempty,gt=0"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleRequest) ToUseCaseRequest(reservationID, actorID int64) *rescheduleReservation.Request {
	return &rescheduleReservation.Request{
		ReservationID: reservationID,
		Start:         r.StartTime,
		End:           r.EndTime,
		StaffID:       r.StaffID,
		ActorID:       actorID,
	}
}
