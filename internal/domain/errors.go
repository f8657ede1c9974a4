package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors, one per kind. Use with errors.Is.
var (
	ErrValidation              = errors.New("validation failed")
	ErrEntityNotFound          = errors.New("entity not found")
	ErrInactiveEntity          = errors.New("entity is inactive")
	ErrStaffUnavailable        = errors.New("staff unavailable")
	ErrNoAvailableStaff        = errors.New("no available staff")
	ErrLocationUnavailable     = errors.New("location unavailable")
	ErrInvalidAddOn            = errors.New("invalid add-on selection")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrReservationClosed       = errors.New("reservation is closed")
	ErrUniqueness              = errors.New("booking code already taken")
	ErrConcurrentModification  = errors.New("reservation was modified concurrently")
)

// Validation reasons.
const (
	ReasonRequired          = "required"
	ReasonMustBePositive    = "must_be_positive"
	ReasonStartNotBeforeEnd = "start_not_before_end"
	ReasonMismatch          = "mismatch"
	ReasonInvalidValue      = "invalid_value"
	ReasonTooLong           = "too_long"
	ReasonInPast            = "in_past"
)

// EntityKind names a catalog or reservation entity in error details.
type EntityKind string

const (
	EntityPackage     EntityKind = "package"
	EntityLocation    EntityKind = "location"
	EntityStaff       EntityKind = "staff"
	EntityAddOn       EntityKind = "add_on"
	EntityReservation EntityKind = "reservation"
)

// ValidationError reports malformed input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// EntityNotFoundError reports an unknown id, or an unknown booking code when Key is set.
type EntityNotFoundError struct {
	Entity EntityKind
	ID     int64
	Key    string
}

func (e *EntityNotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *EntityNotFoundError) Unwrap() error { return ErrEntityNotFound }

// InactiveEntityError reports a disabled entity.
type InactiveEntityError struct {
	Entity EntityKind
	ID     int64
}

func (e *InactiveEntityError) Error() string {
	return fmt.Sprintf("%s %d is inactive", e.Entity, e.ID)
}

func (e *InactiveEntityError) Unwrap() error { return ErrInactiveEntity }

// Reasons a staff member or location rejects a window.
type UnavailableReason string

const (
	ReasonBusy            UnavailableReason = "busy"
	ReasonClosed          UnavailableReason = "closed"
	ReasonBlackout        UnavailableReason = "blackout"
	ReasonOutsideHours    UnavailableReason = "outside_hours"
	ReasonNotAtLocation   UnavailableReason = "not_at_location"
	ReasonCapacityReached UnavailableReason = "capacity_reached"
)

// StaffUnavailableError is returned when an explicitly requested staff member cannot take the window.
type StaffUnavailableError struct {
	StaffID   int64
	StaffName string
	Window    TimeRange
	Reason    UnavailableReason
}

func (e *StaffUnavailableError) Error() string {
	return fmt.Sprintf("staff %d (%s) unavailable for %s: %s", e.StaffID, e.StaffName, e.Window, e.Reason)
}

func (e *StaffUnavailableError) Unwrap() error { return ErrStaffUnavailable }

// NoAvailableStaffError is returned when no candidate passes.
type NoAvailableStaffError struct {
	LocationID *int64
	Window     TimeRange
	Candidates int
}

func (e *NoAvailableStaffError) Error() string {
	return fmt.Sprintf("no available staff for %s (%d candidates checked)", e.Window, e.Candidates)
}

func (e *NoAvailableStaffError) Unwrap() error { return ErrNoAvailableStaff }

// LocationUnavailableError is returned when the location refuses the date or window.
type LocationUnavailableError struct {
	LocationID int64
	Date       time.Time
	Reason     UnavailableReason
}

func (e *LocationUnavailableError) Error() string {
	return fmt.Sprintf("location %d unavailable on %s: %s", e.LocationID, e.Date.Format(DateFormat), e.Reason)
}

func (e *LocationUnavailableError) Unwrap() error { return ErrLocationUnavailable }

// InvalidAddOnError rejects a whole add-on batch.
type InvalidAddOnError struct {
	AddOnID int64
	Reason  string
}

func (e *InvalidAddOnError) Error() string {
	return fmt.Sprintf("add-on %d rejected: %s", e.AddOnID, e.Reason)
}

func (e *InvalidAddOnError) Unwrap() error { return ErrInvalidAddOn }

// TransitionKind distinguishes the two state machines.
type TransitionKind string

const (
	TransitionStatus  TransitionKind = "status"
	TransitionPayment TransitionKind = "payment"
)

// InvalidStatusTransitionError reports an illegal lifecycle move.
type InvalidStatusTransitionError struct {
	Kind TransitionKind
	From string
	To   string
}

func (e *InvalidStatusTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition %s -> %s", e.Kind, e.From, e.To)
}

func (e *InvalidStatusTransitionError) Unwrap() error { return ErrInvalidStatusTransition }

// ReservationClosedError rejects changes to a CANCELLED or COMPLETED reservation.
type ReservationClosedError struct {
	ReservationID int64
	Status        ReservationStatus
}

func (e *ReservationClosedError) Error() string {
	return fmt.Sprintf("reservation %d is %s and cannot be changed", e.ReservationID, e.Status)
}

func (e *ReservationClosedError) Unwrap() error { return ErrReservationClosed }

// UniquenessError reports a booking code collision.
type UniquenessError struct {
	BookingCode string
	Attempts    int
}

func (e *UniquenessError) Error() string {
	return fmt.Sprintf("booking code %s already taken after %d attempts", e.BookingCode, e.Attempts)
}

func (e *UniquenessError) Unwrap() error { return ErrUniqueness }

// IsSchedulingConflict reports the expected "no slot available" failures.
func IsSchedulingConflict(err error) bool {
	return errors.Is(err, ErrStaffUnavailable) ||
		errors.Is(err, ErrNoAvailableStaff) ||
		errors.Is(err, ErrLocationUnavailable)
}

// IsClientError reports errors the caller can fix by changing the request.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInactiveEntity) ||
		errors.Is(err, ErrInvalidAddOn) ||
		errors.Is(err, ErrInvalidStatusTransition) ||
		errors.Is(err, ErrReservationClosed) ||
		IsSchedulingConflict(err)
}

// IsNotFound reports a missing referenced entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound)
}

// IsRetryable reports errors that reflect a narrow race rather than a rule violation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUniqueness) || errors.Is(err, ErrConcurrentModification)
}

// Add-on rejection reasons carried by InvalidAddOnError.
const (
	AddOnUnknown         = "unknown"
	AddOnInactive        = "inactive"
	AddOnInvalidQuantity = "invalid_quantity"
	AddOnDuplicate       = "duplicate"
)
