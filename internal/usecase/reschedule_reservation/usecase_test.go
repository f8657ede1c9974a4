package reschedule_reservation

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/locks"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-StudioBooking/internal/integrations/eventbus"
	"github.com/m04kA/SMC-StudioBooking/internal/service/planner"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/metrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

const (
	locationID = int64(10)
	annaID     = int64(1)
	borisID    = int64(2)
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

// 2025-06-15 is a Sunday.
func onDay(hour, minute int) time.Time {
	return time.Date(2025, 6, 15, hour, minute, 0, 0, time.UTC)
}

func everyDay(open, closeAt string) domain.WorkingHours {
	wh := domain.WorkingHours{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		wh[d] = &domain.DaySchedule{Open: types.TimeString(open), Close: types.TimeString(closeAt)}
	}
	return wh
}

type fixture struct {
	store  *memory.Store
	events *eventbus.Recorder
	uc     *UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	store.PutPackage(domain.Package{ID: 1, Name: "Portrait", DurationMinutes: 60, Price: decimal.NewFromInt(100), IsActive: true})
	store.PutLocation(domain.Location{
		ID:           locationID,
		Slug:         "downtown",
		Name:         "Downtown",
		IsActive:     true,
		Availability: domain.Availability{WorkingHours: everyDay("09:00", "21:00")},
	})
	for _, s := range []domain.Staff{{ID: annaID, Name: "Anna"}, {ID: borisID, Name: "Boris"}} {
		s.IsActive = true
		s.PrimaryLocationID = locationID
		s.Availability = domain.Availability{WorkingHours: everyDay("09:00", "21:00")}
		store.PutStaff(s)
	}

	log := logger.NewNop()
	events := &eventbus.Recorder{}
	uc := NewUseCase(
		store,
		store,
		planner.NewPlanner(store, store, log),
		locks.NewLocal(),
		memory.TxManager{},
		events,
		metrics.Nop{},
		log,
		time.UTC,
	)
	uc.timeProvider = fixedTime{now: now}

	return &fixture{store: store, events: events, uc: uc}
}

func (f *fixture) seed(t *testing.T, code string, staffID int64, from, to time.Time, status domain.ReservationStatus) *domain.Reservation {
	t.Helper()
	window, err := domain.NewTimeRange(from, to)
	require.NoError(t, err)

	res, err := f.store.Insert(context.Background(), &domain.Reservation{
		BookingCode:   code,
		Status:        status,
		PaymentStatus: domain.PaymentPending,
		TimeRange:     window,
		LocationID:    ptr.Ptr(locationID),
		StaffID:       ptr.Ptr(staffID),
		PackageID:     1,
		Customer:      domain.Customer{Name: "Jane Doe", Email: "jane@example.com"},
		TotalAmount:   decimal.NewFromInt(100),
		CreatedAt:     now.Add(-time.Hour),
		UpdatedAt:     now.Add(-time.Hour),
	})
	require.NoError(t, err)
	return res
}

func TestExecute_MovesWindowKeepingStaff(t *testing.T) {
	f := newFixture(t)
	res := f.seed(t, "BK-2025-0001", annaID, onDay(14, 0), onDay(15, 0), domain.StatusConfirmed)

	resp, err := f.uc.Execute(context.Background(), &Request{ReservationID: res.ID, Start: onDay(16, 0), ActorID: 7})
	require.NoError(t, err)

	got := resp.Reservation
	assert.False(t, resp.StaffChanged)
	assert.Equal(t, annaID, *got.StaffID)
	assert.True(t, got.TimeRange.Start().Equal(onDay(16, 0)))
	assert.True(t, got.TimeRange.End().Equal(onDay(17, 0)))
	assert.Equal(t, domain.StatusConfirmed, got.Status)

	require.Len(t, got.Timeline, 1)
	assert.Equal(t, domain.ActionRescheduled, got.Timeline[0].Action)
	meta, ok := got.Timeline[0].Metadata.(domain.RescheduledMetadata)
	require.True(t, ok)
	assert.True(t, meta.FromStart.Equal(onDay(14, 0)))
	assert.Equal(t, int64(7), meta.ActorID)

	assert.Len(t, f.events.Events(), 1)
}

func TestExecute_IgnoresItsOwnWindow(t *testing.T) {
	f := newFixture(t)
	res := f.seed(t, "BK-2025-0001", annaID, onDay(14, 0), onDay(15, 0), domain.StatusPending)

	_, err := f.uc.Execute(context.Background(), &Request{ReservationID: res.ID, Start: onDay(14, 30)})
	require.NoError(t, err)
}

func TestExecute_ConflictLeavesReservationUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.seed(t, "BK-2025-0001", annaID, onDay(10, 0), onDay(11, 0), domain.StatusPending)
	f.seed(t, "BK-2025-0002", annaID, onDay(14, 0), onDay(18, 0), domain.StatusConfirmed)

	_, err := f.uc.Execute(ctx, &Request{ReservationID: res.ID, Start: onDay(16, 0)})

	var unavailable *domain.StaffUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, domain.ReasonBusy, unavailable.Reason)

	stored, err := f.store.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.True(t, stored.TimeRange.Start().Equal(onDay(10, 0)))
	assert.Empty(t, stored.Timeline)
	assert.Empty(t, f.events.Events())
}

func TestExecute_ChangesStaff(t *testing.T) {
	f := newFixture(t)
	res := f.seed(t, "BK-2025-0001", annaID, onDay(10, 0), onDay(11, 0), domain.StatusPending)

	resp, err := f.uc.Execute(context.Background(), &Request{
		ReservationID: res.ID,
		Start:         onDay(12, 0),
		End:           ptr.Ptr(onDay(14, 0)),
		StaffID:       ptr.Ptr(borisID),
	})
	require.NoError(t, err)

	assert.True(t, resp.StaffChanged)
	assert.Equal(t, borisID, *resp.Reservation.StaffID)
	assert.True(t, resp.Reservation.TimeRange.End().Equal(onDay(14, 0)))

	require.Len(t, resp.Reservation.Timeline, 2)
	assert.Equal(t, domain.ActionRescheduled, resp.Reservation.Timeline[0].Action)
	assert.Equal(t, domain.ActionStaffAssigned, resp.Reservation.Timeline[1].Action)
	meta, ok := resp.Reservation.Timeline[1].Metadata.(domain.StaffAssignedMetadata)
	require.True(t, ok)
	assert.Equal(t, annaID, *meta.FromStaffID)
	assert.Equal(t, borisID, meta.ToStaffID)
}

func TestExecute_RejectsClosedAndMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cancelled := f.seed(t, "BK-2025-0001", annaID, onDay(10, 0), onDay(11, 0), domain.StatusCancelled)
	completed := f.seed(t, "BK-2025-0002", annaID, onDay(12, 0), onDay(13, 0), domain.StatusCompleted)

	for _, id := range []int64{cancelled.ID, completed.ID} {
		_, err := f.uc.Execute(ctx, &Request{ReservationID: id, Start: onDay(16, 0)})
		assert.ErrorIs(t, err, domain.ErrReservationClosed)
	}

	_, err := f.uc.Execute(ctx, &Request{ReservationID: 404, Start: onDay(16, 0)})
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)

	_, err = f.uc.Execute(ctx, &Request{ReservationID: cancelled.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExecute_OutsideLocationHours(t *testing.T) {
	f := newFixture(t)
	res := f.seed(t, "BK-2025-0001", annaID, onDay(10, 0), onDay(11, 0), domain.StatusPending)

	_, err := f.uc.Execute(context.Background(), &Request{ReservationID: res.ID, Start: onDay(20, 30)})

	var location *domain.LocationUnavailableError
	require.ErrorAs(t, err, &location)
	assert.Equal(t, domain.ReasonOutsideHours, location.Reason)
}

func TestExecute_RejectsStartInThePast(t *testing.T) {
	f := newFixture(t)
	res := f.seed(t, "BK-2025-0001", annaID, onDay(14, 0), onDay(15, 0), domain.StatusConfirmed)

	_, err := f.uc.Execute(context.Background(), &Request{
		ReservationID: res.ID,
		Start:         now.Add(-time.Hour),
	})

	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "startTime", validation.Field)
	assert.Equal(t, domain.ReasonInPast, validation.Reason)

	stored, err := f.store.GetByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.True(t, stored.TimeRange.Start().Equal(onDay(14, 0)))
	assert.Empty(t, stored.Timeline)
}
