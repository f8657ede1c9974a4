package eventbus

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// Event сообщение о записи в таймлайне бронирования
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	ReservationID int64           `json:"reservationId"`
	BookingCode   string          `json:"bookingCode"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	StaffID       *int64          `json:"staffId,omitempty"`
	LocationID    *int64          `json:"locationId,omitempty"`
	Start         time.Time       `json:"start"`
	End           time.Time       `json:"end"`
	Description   string          `json:"description"`
	Metadata      json.RawMessage `json:"metadata"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// RoutingKey ключ маршрутизации, например reservation.status_changed
func (e Event) RoutingKey() string {
	return e.Type
}

// NewEvents строит по одному событию на каждую запись таймлайна
func NewEvents(res *domain.Reservation, entries []domain.TimelineEntry) ([]Event, error) {
	events := make([]Event, 0, len(entries))
	for _, entry := range entries {
		metadata, err := domain.EncodeMetadata(entry.Metadata)
		if err != nil {
			return nil, err
		}

		events = append(events, Event{
			ID:            uuid.NewString(),
			Type:          "reservation." + strings.ToLower(string(entry.Action)),
			ReservationID: res.ID,
			BookingCode:   res.BookingCode,
			Status:        string(res.Status),
			PaymentStatus: string(res.PaymentStatus),
			StaffID:       res.StaffID,
			LocationID:    res.LocationID,
			Start:         res.TimeRange.Start(),
			End:           res.TimeRange.End(),
			Description:   entry.Description,
			Metadata:      metadata,
			OccurredAt:    entry.CreatedAt,
		})
	}
	return events, nil
}
