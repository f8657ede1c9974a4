package reschedule_reservation

import (
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// Request модель запроса на перенос бронирования
type Request struct {
	ReservationID int64
	Start         time.Time
	End           *time.Time // если nil, сохраняется базовая длительность пакета
	StaffID       *int64     // если nil, остается текущий сотрудник
	ActorID       int64
}

// Response модель ответа с перенесенным бронированием
type Response struct {
	Reservation  *domain.Reservation
	StaffChanged bool
}
