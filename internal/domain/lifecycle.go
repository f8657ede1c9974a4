package domain

// statusTransitions is the ordinary reservation graph. IN_PROGRESS and
// RESCHEDULED are recognised values without ordinary edges: they are only
// reachable, and only left, through an admin override.
var statusTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:     {StatusConfirmed, StatusCancelled},
	StatusConfirmed:   {StatusCancelled, StatusCompleted},
	StatusCancelled:   {},
	StatusCompleted:   {},
	StatusInProgress:  {},
	StatusRescheduled: {},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:  {PaymentPartial, PaymentPaid, PaymentFailed},
	PaymentPartial:  {PaymentPaid, PaymentFailed},
	PaymentPaid:     {PaymentRefunded, PaymentFailed},
	PaymentRefunded: {PaymentFailed},
	PaymentFailed:   {PaymentPending},
}

// IsValid returns true if the status is a recognised value.
func (s ReservationStatus) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo returns true if s -> target is an ordinary transition.
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	for _, t := range statusTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsBlocking returns true for statuses that occupy staff time.
func (s ReservationStatus) IsBlocking() bool {
	for _, b := range BlockingStatuses {
		if s == b {
			return true
		}
	}
	return false
}

// IsClosed returns true for CANCELLED and COMPLETED.
func (s ReservationStatus) IsClosed() bool {
	for _, c := range ClosedStatuses {
		if s == c {
			return true
		}
	}
	return false
}

func (s ReservationStatus) String() string {
	return string(s)
}

// ParseReservationStatus converts a string, rejecting unknown values.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	status := ReservationStatus(s)
	if !status.IsValid() {
		return "", &ValidationError{Field: "status", Reason: ReasonInvalidValue}
	}
	return status, nil
}

// CheckStatusTransition validates from -> to against the ordinary graph.
func CheckStatusTransition(from, to ReservationStatus) error {
	if !to.IsValid() || !from.CanTransitionTo(to) {
		return &InvalidStatusTransitionError{Kind: TransitionStatus, From: string(from), To: string(to)}
	}
	return nil
}

// IsValid returns true if the payment status is a recognised value.
func (s PaymentStatus) IsValid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

// CanTransitionTo returns true if s -> target is allowed.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, t := range paymentTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s PaymentStatus) String() string {
	return string(s)
}

// ParsePaymentStatus converts a string, rejecting unknown values.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", &ValidationError{Field: "paymentStatus", Reason: ReasonInvalidValue}
	}
	return status, nil
}

// CheckPaymentTransition validates from -> to against the payment graph.
func CheckPaymentTransition(from, to PaymentStatus) error {
	if !to.IsValid() || !from.CanTransitionTo(to) {
		return &InvalidStatusTransitionError{Kind: TransitionPayment, From: string(from), To: string(to)}
	}
	return nil
}
