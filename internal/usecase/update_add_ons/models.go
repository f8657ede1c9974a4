package update_add_ons

import (
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/scheduling"
)

// Request модель запроса на замену дополнений бронирования
type Request struct {
	ReservationID int64
	AddOns        []scheduling.Selection // полный новый набор; пустой снимает все дополнения
	TotalAmount   *decimal.Decimal
	ActorID       int64
}

// Response модель ответа с обновленным бронированием
type Response struct {
	Reservation *domain.Reservation
}
