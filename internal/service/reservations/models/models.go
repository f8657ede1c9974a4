package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// Request модели

// ChangeStatusRequest запрос на переход по графу статусов
type ChangeStatusRequest struct {
	ActorID int64  `json:"-"`
	Status  string `json:"status" validate:"required"`
	Reason  string `json:"reason,omitempty" validate:"max=500"`
}

// ChangePaymentStatusRequest запрос на смену статуса оплаты
type ChangePaymentStatusRequest struct {
	ActorID       int64  `json:"-"`
	PaymentStatus string `json:"paymentStatus" validate:"required"`
	Reference     string `json:"reference,omitempty" validate:"max=255"`
}

// ForceStatusRequest запрос администратора на принудительную смену статуса
type ForceStatusRequest struct {
	ActorID int64  `json:"-"`
	Status  string `json:"status" validate:"required"`
	Reason  string `json:"reason" validate:"required,max=500"`
}

// Response модели

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID            int64                   `json:"id"`
	BookingCode   string                  `json:"bookingCode"`
	Status        string                  `json:"status"`
	PaymentStatus string                  `json:"paymentStatus"`
	StartTime     time.Time               `json:"startTime"`
	EndTime       time.Time               `json:"endTime"`
	LocationID    *int64                  `json:"locationId,omitempty"`
	StaffID       *int64                  `json:"staffId,omitempty"`
	PackageID     int64                   `json:"packageId"`
	Customer      CustomerResponse        `json:"customer"`
	Notes         *string                 `json:"notes,omitempty"`
	TotalAmount   decimal.Decimal         `json:"totalAmount"`
	LineItems     []LineItemResponse      `json:"lineItems"`
	Timeline      []TimelineEntryResponse `json:"timeline"`
	CreatedAt     time.Time               `json:"createdAt"`
	UpdatedAt     time.Time               `json:"updatedAt"`
}

// CustomerResponse контактные данные клиента
type CustomerResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// LineItemResponse дополнение с зафиксированной ценой
type LineItemResponse struct {
	AddOnID         int64           `json:"addOnId"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Total           decimal.Decimal `json:"total"`
	DurationMinutes int             `json:"durationMinutes"`
}

// TimelineEntryResponse запись истории изменений
type TimelineEntryResponse struct {
	ID          int64                   `json:"id"`
	Action      string                  `json:"action"`
	Description string                  `json:"description"`
	Metadata    domain.TimelineMetadata `json:"metadata"`
	CreatedAt   time.Time               `json:"createdAt"`
}

// FromDomainReservation конвертирует domain.Reservation в ReservationResponse
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	items := make([]LineItemResponse, 0, len(r.LineItems))
	for _, li := range r.LineItems {
		items = append(items, LineItemResponse{
			AddOnID:         li.AddOnID,
			Name:            li.Name,
			Quantity:        li.Quantity,
			UnitPrice:       li.UnitPrice,
			Total:           li.Total(),
			DurationMinutes: li.DurationMinutes,
		})
	}

	timeline := make([]TimelineEntryResponse, 0, len(r.Timeline))
	for _, e := range r.Timeline {
		timeline = append(timeline, TimelineEntryResponse{
			ID:          e.ID,
			Action:      string(e.Action),
			Description: e.Description,
			Metadata:    e.Metadata,
			CreatedAt:   e.CreatedAt,
		})
	}

	return &ReservationResponse{
		ID:            r.ID,
		BookingCode:   r.BookingCode,
		Status:        string(r.Status),
		PaymentStatus: string(r.PaymentStatus),
		StartTime:     r.TimeRange.Start(),
		EndTime:       r.TimeRange.End(),
		LocationID:    r.LocationID,
		StaffID:       r.StaffID,
		PackageID:     r.PackageID,
		Customer: CustomerResponse{
			Name:  r.Customer.Name,
			Email: r.Customer.Email,
			Phone: r.Customer.Phone,
		},
		Notes:       r.Notes,
		TotalAmount: r.TotalAmount,
		LineItems:   items,
		Timeline:    timeline,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
