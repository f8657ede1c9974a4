package domain

// Booking code format: BK-<year>-<sequence>
const (
	BookingCodePrefix    = "BK"
	BookingCodeSeqDigits = 4
)

// Business validation constants
const (
	MaxNotesLength          = 1000
	MaxCustomerFieldLength  = 255
	MaxAddOnQuantity        = 20
	MaxOverrideReasonLength = 500
	DefaultCodeAttempts     = 3
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// BlockingStatuses occupy a staff member's time. CANCELLED and COMPLETED never block.
var BlockingStatuses = []ReservationStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
}

// CapacityExcludedStatuses are not counted against a location's daily limit.
var CapacityExcludedStatuses = []ReservationStatus{
	StatusCancelled,
}

// ClosedStatuses forbid staff, time and add-on changes.
var ClosedStatuses = []ReservationStatus{
	StatusCancelled,
	StatusCompleted,
}
