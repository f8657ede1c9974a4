package scheduling

import (
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// EffectiveWindow returns the time a booking occupies.
// The base end is the explicit end when given, otherwise start plus the
// package duration; add-on minutes always extend it.
func EffectiveWindow(start time.Time, end *time.Time, pkg *domain.Package, items []domain.LineItem) (domain.TimeRange, error) {
	if start.IsZero() {
		return domain.TimeRange{}, &domain.ValidationError{Field: "startTime", Reason: domain.ReasonRequired}
	}

	baseEnd := start.Add(pkg.Duration())
	if end != nil {
		if !start.Before(*end) {
			return domain.TimeRange{}, &domain.ValidationError{Field: "endTime", Reason: domain.ReasonStartNotBeforeEnd}
		}
		baseEnd = *end
	}

	extra := time.Duration(domain.ItemsExtraMinutes(items)) * time.Minute
	return domain.NewTimeRange(start, baseEnd.Add(extra))
}

// ReplaceExtras moves the end of window from the old add-on extension to the
// new one, keeping the base duration.
func ReplaceExtras(window domain.TimeRange, before, after []domain.LineItem) (domain.TimeRange, error) {
	delta := domain.ItemsExtraMinutes(after) - domain.ItemsExtraMinutes(before)
	return window.WithEnd(window.End().Add(time.Duration(delta) * time.Minute))
}
