package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

// DaySchedule is the open/close pair for one weekday.
type DaySchedule struct {
	Open  types.TimeString `json:"open"`
	Close types.TimeString `json:"close"`
}

// Range returns the schedule as a concrete range on date.
func (d DaySchedule) Range(date time.Time) (TimeRange, error) {
	open, err := d.Open.On(date)
	if err != nil {
		return TimeRange{}, err
	}
	closeAt, err := d.Close.On(date)
	if err != nil {
		return TimeRange{}, err
	}
	return NewTimeRange(open, closeAt)
}

// WorkingHours maps a weekday to its schedule. A missing or nil entry means closed.
type WorkingHours map[time.Weekday]*DaySchedule

// For returns the schedule of the given weekday, if open.
func (w WorkingHours) For(day time.Weekday) (DaySchedule, bool) {
	s, ok := w[day]
	if !ok || s == nil {
		return DaySchedule{}, false
	}
	return *s, true
}

func (w WorkingHours) MarshalJSON() ([]byte, error) {
	out := make(map[string]*DaySchedule, len(w))
	for day, s := range w {
		out[strings.ToLower(day.String())] = s
	}
	return json.Marshal(out)
}

func (w *WorkingHours) UnmarshalJSON(data []byte) error {
	var raw map[string]*DaySchedule
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed := make(WorkingHours, len(raw))
	for name, s := range raw {
		day, ok := weekdayByName[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("unknown weekday %q", name)
		}
		parsed[day] = s
	}
	*w = parsed
	return nil
}

var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Availability is the schedule shape shared by locations and staff.
type Availability struct {
	WorkingHours  WorkingHours
	BlackoutDates []time.Time
}

// IsBlackout reports whether date falls on one of the blackout days.
func (a Availability) IsBlackout(date time.Time) bool {
	y, m, d := date.Date()
	for _, b := range a.BlackoutDates {
		by, bm, bd := b.Date()
		if by == y && bm == m && bd == d {
			return true
		}
	}
	return false
}

// Location is a studio site.
type Location struct {
	ID                int64
	Slug              string
	Name              string
	IsActive          bool
	MaxBookingsPerDay *int // nil = unlimited
	Availability
}

// Staff is a photographer or assistant that can be booked.
type Staff struct {
	ID                int64
	Name              string
	IsActive          bool
	PrimaryLocationID int64
	LocationIDs       []int64 // additional eligible locations
	Availability
}

// WorksAt reports whether the staff member may be booked at locationID.
func (s *Staff) WorksAt(locationID int64) bool {
	if s.PrimaryLocationID == locationID {
		return true
	}
	for _, id := range s.LocationIDs {
		if id == locationID {
			return true
		}
	}
	return false
}

// Package is a bookable photography package.
type Package struct {
	ID              int64
	Name            string
	DurationMinutes int
	Price           decimal.Decimal
	IsActive        bool
}

func (p *Package) Duration() time.Duration {
	return time.Duration(p.DurationMinutes) * time.Minute
}

// AddOn is an optional extra; its price is snapshotted into line items.
type AddOn struct {
	ID              int64
	Name            string
	Price           decimal.Decimal
	DurationMinutes *int
	IsActive        bool
}

// ExtraMinutes returns the time one unit of the add-on adds to a session.
func (a *AddOn) ExtraMinutes() int {
	if a.DurationMinutes == nil {
		return 0
	}
	return *a.DurationMinutes
}
