package update_add_ons

import (
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-StudioBooking/internal/scheduling"
	updateAddOns "github.com/m04kA/SMC-StudioBooking/internal/usecase/update_add_ons"
)

// UpdateAddOnsRequest HTTP request model. AddOns полный новый набор, пустой снимает все дополнения.
type UpdateAddOnsRequest struct {
	AddOns      []AddOnRequest   `json:"addOns" validate:"dive"`
	TotalAmount *decimal.Decimal `json:"totalAmount,omitempty"`
}

// AddOnRequest выбранное дополнение
type AddOnRequest struct {
	AddOnID  int64 `json:"addOnId" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"required,gt=0"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *UpdateAddOnsRequest) ToUseCaseRequest(reservationID, actorID int64) *updateAddOns.Request {
	addOns := make([]scheduling.Selection, 0, len(r.AddOns))
	for _, a := range r.AddOns {
		addOns = append(addOns, scheduling.Selection{AddOnID: a.AddOnID, Quantity: a.Quantity})
	}

	return &updateAddOns.Request{
		ReservationID: reservationID,
		AddOns:        addOns,
		TotalAmount:   r.TotalAmount,
		ActorID:       actorID,
	}
}
