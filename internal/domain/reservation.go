package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationStatus represents the status of a reservation
type ReservationStatus string

const (
	StatusPending     ReservationStatus = "PENDING"
	StatusConfirmed   ReservationStatus = "CONFIRMED"
	StatusInProgress  ReservationStatus = "IN_PROGRESS"
	StatusCompleted   ReservationStatus = "COMPLETED"
	StatusCancelled   ReservationStatus = "CANCELLED"
	StatusRescheduled ReservationStatus = "RESCHEDULED"
)

// PaymentStatus is tracked independently of ReservationStatus
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPartial  PaymentStatus = "PARTIAL"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Customer holds the contact fields captured at booking time
type Customer struct {
	Name  string
	Email string
	Phone string
}

// LineItem is an add-on attached to a reservation with its price fixed at booking time
type LineItem struct {
	AddOnID         int64           `json:"addOnId"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DurationMinutes int             `json:"durationMinutes"` // per unit
}

// Total returns UnitPrice * Quantity
func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// ExtraMinutes returns the session time the item adds
func (li LineItem) ExtraMinutes() int {
	return li.DurationMinutes * li.Quantity
}

// Reservation is a pending or confirmed occupation of a staff member's time
type Reservation struct {
	ID            int64
	BookingCode   string
	Status        ReservationStatus
	PaymentStatus PaymentStatus
	TimeRange     TimeRange
	LocationID    *int64
	StaffID       *int64
	PackageID     int64
	Customer      Customer
	Notes         *string
	TotalAmount   decimal.Decimal
	LineItems     []LineItem
	Timeline      []TimelineEntry

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBlocking returns true if the reservation occupies its staff member's time
func (r *Reservation) IsBlocking() bool {
	return r.Status.IsBlocking()
}

// IsClosed returns true if staff, time and add-ons can no longer change
func (r *Reservation) IsClosed() bool {
	return r.Status.IsClosed()
}

// CountsTowardsCapacity returns true if the reservation uses a location's daily slot
func (r *Reservation) CountsTowardsCapacity() bool {
	for _, s := range CapacityExcludedStatuses {
		if r.Status == s {
			return false
		}
	}
	return true
}

// HasStaff returns true if the reservation is assigned to staffID
func (r *Reservation) HasStaff(staffID int64) bool {
	return r.StaffID != nil && *r.StaffID == staffID
}

// AtLocation returns true if the reservation is booked at locationID
func (r *Reservation) AtLocation(locationID int64) bool {
	return r.LocationID != nil && *r.LocationID == locationID
}

// EnsureOpen returns ReservationClosedError for CANCELLED and COMPLETED reservations
func (r *Reservation) EnsureOpen() error {
	if r.IsClosed() {
		return &ReservationClosedError{ReservationID: r.ID, Status: r.Status}
	}
	return nil
}

// ItemsTotal sums the line items
func ItemsTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.Total())
	}
	return total
}

// ItemsExtraMinutes sums the time added by the line items
func ItemsExtraMinutes(items []LineItem) int {
	total := 0
	for _, li := range items {
		total += li.ExtraMinutes()
	}
	return total
}

// ReservationFilter narrows reservation lookups
type ReservationFilter struct {
	StaffIDs             []int64
	LocationID           *int64
	Window               *TimeRange
	Statuses             []ReservationStatus
	ExcludeReservationID int64
}

// ReservationPatch is a guarded change to a stored reservation. The change is
// applied only while the stored status still equals ExpectedStatus (and the
// payment status equals ExpectedPayment, when set). Timeline entries are
// appended in the same write.
type ReservationPatch struct {
	ExpectedStatus  ReservationStatus
	ExpectedPayment *PaymentStatus

	Status        *ReservationStatus
	PaymentStatus *PaymentStatus
	Window        *TimeRange
	StaffID       *int64
	LineItems     *[]LineItem
	TotalAmount   *decimal.Decimal

	Timeline  []TimelineEntry
	UpdatedAt time.Time
}
