package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeRange is a half-open interval [start, end).
// Zero value is not a valid range; use NewTimeRange.
type TimeRange struct {
	start time.Time
	end   time.Time
}

// NewTimeRange builds a range, rejecting start >= end.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() {
		return TimeRange{}, &ValidationError{Field: "timeRange", Reason: ReasonRequired}
	}
	if !start.Before(end) {
		return TimeRange{}, &ValidationError{Field: "timeRange", Reason: ReasonStartNotBeforeEnd}
	}
	return TimeRange{start: start, end: end}, nil
}

// RangeFrom builds a range of the given length starting at start.
func RangeFrom(start time.Time, d time.Duration) (TimeRange, error) {
	return NewTimeRange(start, start.Add(d))
}

// DayOf returns the calendar day containing t, in t's location.
func DayOf(t time.Time) TimeRange {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return TimeRange{start: start, end: start.AddDate(0, 0, 1)}
}

func (r TimeRange) Start() time.Time {
	return r.start
}

func (r TimeRange) End() time.Time {
	return r.end
}

func (r TimeRange) Duration() time.Duration {
	return r.end.Sub(r.start)
}

func (r TimeRange) IsZero() bool {
	return r.start.IsZero() && r.end.IsZero()
}

// Overlaps reports whether the two ranges share any instant.
// Touching endpoints do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return Overlaps(r, other)
}

// Within reports whether r lies entirely inside outer.
func (r TimeRange) Within(outer TimeRange) bool {
	return !r.start.Before(outer.start) && !r.end.After(outer.end)
}

// WithEnd returns a copy of r ending at end.
func (r TimeRange) WithEnd(end time.Time) (TimeRange, error) {
	return NewTimeRange(r.start, end)
}

// Date is the calendar day on which the range starts.
func (r TimeRange) Date() time.Time {
	return DayOf(r.start).start
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.start.Format(time.RFC3339), r.end.Format(time.RFC3339))
}

// Overlaps uses half-open comparison: a.start < b.end && b.start < a.end.
func Overlaps(a, b TimeRange) bool {
	return a.start.Before(b.end) && b.start.Before(a.end)
}

type timeRangeJSON struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r TimeRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(timeRangeJSON{Start: r.start, End: r.end})
}

func (r *TimeRange) UnmarshalJSON(data []byte) error {
	var raw timeRangeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewTimeRange(raw.Start, raw.End)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
