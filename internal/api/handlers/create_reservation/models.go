package create_reservation

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/scheduling"
	createReservation "github.com/m04kA/SMC-StudioBooking/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	PackageID   int64            `json:"packageId" validate:"required,gt=0"`
	StartTime   time.Time        `json:"startTime" validate:"required"` // RFC3339, "2025-06-15T14:00:00+03:00"
	EndTime     *time.Time       `json:"endTime,omitempty"`
	LocationID  *int64           `json:"locationId,omitempty" validate:"omitempty,gt=0"`
	StaffID     *int64           `json:"staffId,omitempty" validate:"omitempty,gt=0"`
	Customer    CustomerRequest  `json:"customer"`
	Notes       *string          `json:"notes,omitempty" validate:"omitempty,max=1000"`
	AddOns      []AddOnRequest   `json:"addOns,omitempty" validate:"omitempty,dive"`
	TotalAmount *decimal.Decimal `json:"totalAmount,omitempty"`
}

// CustomerRequest контактные данные клиента
type CustomerRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
	Phone string `json:"phone,omitempty" validate:"max=255"`
}

// AddOnRequest выбранное дополнение
type AddOnRequest struct {
	AddOnID  int64 `json:"addOnId" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"required,gt=0"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(actorID int64) *createReservation.Request {
	addOns := make([]scheduling.Selection, 0, len(r.AddOns))
	for _, a := range r.AddOns {
		addOns = append(addOns, scheduling.Selection{AddOnID: a.AddOnID, Quantity: a.Quantity})
	}

	return &createReservation.Request{
		PackageID:  r.PackageID,
		Start:      r.StartTime,
		End:        r.EndTime,
		LocationID: r.LocationID,
		StaffID:    r.StaffID,
		Customer: domain.Customer{
			Name:  strings.TrimSpace(r.Customer.Name),
			Email: strings.TrimSpace(r.Customer.Email),
			Phone: strings.TrimSpace(r.Customer.Phone),
		},
		Notes:       r.Notes,
		AddOns:      addOns,
		TotalAmount: r.TotalAmount,
		ActorID:     actorID,
	}
}
