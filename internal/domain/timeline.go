package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TimelineAction keys the metadata payload of a timeline entry.
type TimelineAction string

const (
	ActionCreated              TimelineAction = "CREATED"
	ActionStatusChanged        TimelineAction = "STATUS_CHANGED"
	ActionPaymentStatusChanged TimelineAction = "PAYMENT_STATUS_CHANGED"
	ActionStaffAssigned        TimelineAction = "STAFF_ASSIGNED"
	ActionAddOnsUpdated        TimelineAction = "ADD_ONS_UPDATED"
	ActionRescheduled          TimelineAction = "RESCHEDULED"
	ActionAdminOverride        TimelineAction = "ADMIN_OVERRIDE"
)

// TimelineMetadata is implemented by one struct per action.
type TimelineMetadata interface {
	Action() TimelineAction
	describe() string
}

// TimelineEntry is an immutable record of one change to a reservation.
type TimelineEntry struct {
	ID          int64
	Action      TimelineAction
	Description string
	Metadata    TimelineMetadata
	CreatedAt   time.Time
}

// NewTimelineEntry derives the action and description from meta.
func NewTimelineEntry(meta TimelineMetadata, at time.Time) TimelineEntry {
	return TimelineEntry{
		Action:      meta.Action(),
		Description: meta.describe(),
		Metadata:    meta,
		CreatedAt:   at,
	}
}

type CreatedMetadata struct {
	BookingCode string          `json:"bookingCode"`
	PackageID   int64           `json:"packageId"`
	LocationID  *int64          `json:"locationId,omitempty"`
	StaffID     *int64          `json:"staffId,omitempty"`
	Start       time.Time       `json:"start"`
	End         time.Time       `json:"end"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	LineItems   []LineItem      `json:"lineItems"`
}

func (CreatedMetadata) Action() TimelineAction { return ActionCreated }

func (m CreatedMetadata) describe() string {
	return fmt.Sprintf("Reservation %s created", m.BookingCode)
}

type StatusChangedMetadata struct {
	From    ReservationStatus `json:"from"`
	To      ReservationStatus `json:"to"`
	ActorID int64             `json:"actorId,omitempty"`
	Reason  string            `json:"reason,omitempty"`
}

func (StatusChangedMetadata) Action() TimelineAction { return ActionStatusChanged }

func (m StatusChangedMetadata) describe() string {
	return fmt.Sprintf("Status changed from %s to %s", m.From, m.To)
}

type PaymentStatusChangedMetadata struct {
	From      PaymentStatus `json:"from"`
	To        PaymentStatus `json:"to"`
	Reference string        `json:"reference,omitempty"`
	ActorID   int64         `json:"actorId,omitempty"`
}

func (PaymentStatusChangedMetadata) Action() TimelineAction { return ActionPaymentStatusChanged }

func (m PaymentStatusChangedMetadata) describe() string {
	return fmt.Sprintf("Payment status changed from %s to %s", m.From, m.To)
}

type StaffAssignedMetadata struct {
	FromStaffID *int64 `json:"fromStaffId,omitempty"`
	ToStaffID   int64  `json:"toStaffId"`
	ActorID     int64  `json:"actorId,omitempty"`
}

func (StaffAssignedMetadata) Action() TimelineAction { return ActionStaffAssigned }

func (m StaffAssignedMetadata) describe() string {
	if m.FromStaffID == nil {
		return fmt.Sprintf("Staff %d assigned", m.ToStaffID)
	}
	return fmt.Sprintf("Staff reassigned from %d to %d", *m.FromStaffID, m.ToStaffID)
}

type AddOnsUpdatedMetadata struct {
	Before      []LineItem      `json:"before"`
	After       []LineItem      `json:"after"`
	TotalBefore decimal.Decimal `json:"totalBefore"`
	TotalAfter  decimal.Decimal `json:"totalAfter"`
	EndBefore   time.Time       `json:"endBefore"`
	EndAfter    time.Time       `json:"endAfter"`
	ActorID     int64           `json:"actorId,omitempty"`
}

func (AddOnsUpdatedMetadata) Action() TimelineAction { return ActionAddOnsUpdated }

func (m AddOnsUpdatedMetadata) describe() string {
	return fmt.Sprintf("Add-ons updated (%d -> %d items), total %s -> %s",
		len(m.Before), len(m.After), m.TotalBefore.StringFixed(2), m.TotalAfter.StringFixed(2))
}

type RescheduledMetadata struct {
	FromStart time.Time `json:"fromStart"`
	FromEnd   time.Time `json:"fromEnd"`
	ToStart   time.Time `json:"toStart"`
	ToEnd     time.Time `json:"toEnd"`
	ActorID   int64     `json:"actorId,omitempty"`
}

func (RescheduledMetadata) Action() TimelineAction { return ActionRescheduled }

func (m RescheduledMetadata) describe() string {
	return fmt.Sprintf("Rescheduled from %s to %s",
		m.FromStart.Format(time.RFC3339), m.ToStart.Format(time.RFC3339))
}

type AdminOverrideMetadata struct {
	From    ReservationStatus `json:"from"`
	To      ReservationStatus `json:"to"`
	Reason  string            `json:"reason"`
	ActorID int64             `json:"actorId"`
}

func (AdminOverrideMetadata) Action() TimelineAction { return ActionAdminOverride }

func (m AdminOverrideMetadata) describe() string {
	return fmt.Sprintf("Status forced from %s to %s by administrator", m.From, m.To)
}

// EncodeMetadata serialises a payload for storage.
func EncodeMetadata(meta TimelineMetadata) ([]byte, error) {
	return json.Marshal(meta)
}

// DecodeMetadata restores the payload struct matching action.
func DecodeMetadata(action TimelineAction, raw []byte) (TimelineMetadata, error) {
	var (
		meta TimelineMetadata
		err  error
	)

	switch action {
	case ActionCreated:
		var m CreatedMetadata
		err = json.Unmarshal(raw, &m)
		meta = m
	case ActionStatusChanged:
		var m StatusChangedMetadata
		err = json.Unmarshal(raw, &m)
		meta = m
	case ActionPaymentStatusChanged:
		var m PaymentStatusChangedMetadata
		err = json.Unmarshal(raw, &m)
		meta = m
	case ActionStaffAssigned:
		var m StaffAssignedMetadata
		err = json.Unmarshal(raw, &m)
		meta = m
	case ActionAddOnsUpdated:
		var m AddOnsUpdatedMetadata
		err = json.Unmarshal(raw, &m)
		meta = m
	case ActionRescheduled:
		var m RescheduledMetadata
		err = json.Unmarshal(raw, &m)
		meta = m
	case ActionAdminOverride:
		var m AdminOverrideMetadata
		err = json.Unmarshal(raw, &m)
		meta = m
	default:
		return nil, fmt.Errorf("unknown timeline action %q", action)
	}

	if err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", action, err)
	}
	return meta, nil
}
