package update_add_ons

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
	"github.com/m04kA/SMC-StudioBooking/internal/scheduling"
	"github.com/m04kA/SMC-StudioBooking/internal/service/planner"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/metrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

const (
	locationID = int64(10)
	annaID     = int64(1)
	flashID    = int64(100)
	retiredID  = int64(101)
	albumID    = int64(102)
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

// 2025-06-15 is a Sunday.
func onDay(hour int) time.Time {
	return time.Date(2025, 6, 15, hour, 0, 0, 0, time.UTC)
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
	store.PutLocation(domain.Location{
		ID:           locationID,
		Slug:         "downtown",
		Name:         "Downtown",
		IsActive:     true,
		Availability: domain.Availability{WorkingHours: everyDay("09:00", "21:00")},
	})
	store.PutStaff(domain.Staff{
		ID:                annaID,
		Name:              "Anna",
		IsActive:          true,
		PrimaryLocationID: locationID,
		Availability:      domain.Availability{WorkingHours: everyDay("09:00", "21:00")},
	})
	store.PutAddOn(domain.AddOn{ID: flashID, Name: "Flash kit", Price: decimal.RequireFromString("25.50"), DurationMinutes: ptr.Ptr(30), IsActive: true})
	store.PutAddOn(domain.AddOn{ID: retiredID, Name: "Film", Price: decimal.NewFromInt(10), IsActive: false})
	store.PutAddOn(domain.AddOn{ID: albumID, Name: "Album", Price: decimal.NewFromInt(40), IsActive: true})

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
	)
	uc.timeProvider = fixedTime{now: now}

	return &fixture{store: store, events: events, uc: uc}
}

func (f *fixture) seed(t *testing.T, code string, from, to int, status domain.ReservationStatus, items []domain.LineItem) *domain.Reservation {
	t.Helper()
	window, err := domain.NewTimeRange(onDay(from), onDay(to))
	require.NoError(t, err)

	res, err := f.store.Insert(context.Background(), &domain.Reservation{
		BookingCode:   code,
		Status:        status,
		PaymentStatus: domain.PaymentPending,
		TimeRange:     window,
		LocationID:    ptr.Ptr(locationID),
		StaffID:       ptr.Ptr(annaID),
		PackageID:     1,
		Customer:      domain.Customer{Name: "Jane Doe", Email: "jane@example.com"},
		TotalAmount:   decimal.NewFromInt(100).Add(domain.ItemsTotal(items)),
		LineItems:     items,
		CreatedAt:     now.Add(-time.Hour),
		UpdatedAt:     now.Add(-time.Hour),
	})
	require.NoError(t, err)
	return res
}

func TestExecute_AddsItemsAndExtendsWindow(t *testing.T) {
	f := newFixture(t)
	res := f.seed(t, "BK-2025-0001", 14, 15, domain.StatusPending, nil)

	resp, err := f.uc.Execute(context.Background(), &Request{
		ReservationID: res.ID,
		AddOns:        []scheduling.Selection{{AddOnID: flashID, Quantity: 2}, {AddOnID: albumID, Quantity: 1}},
		TotalAmount:   ptr.Ptr(decimal.NewFromInt(191)),
		ActorID:       3,
	})
	require.NoError(t, err)

	got := resp.Reservation
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(191)))
	assert.True(t, got.TimeRange.End().Equal(onDay(16)))
	require.Len(t, got.LineItems, 2)

	require.Len(t, got.Timeline, 1)
	meta, ok := got.Timeline[0].Metadata.(domain.AddOnsUpdatedMetadata)
	require.True(t, ok)
	assert.Empty(t, meta.Before)
	assert.Len(t, meta.After, 2)
	assert.True(t, meta.TotalBefore.Equal(decimal.NewFromInt(100)))
	assert.True(t, meta.EndAfter.Equal(onDay(16)))

	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "reservation.add_ons_updated", events[0].Type)
}

func TestExecute_RemovingItemsShrinksWindow(t *testing.T) {
	f := newFixture(t)
	items := []domain.LineItem{{AddOnID: flashID, Name: "Flash kit", Quantity: 2, UnitPrice: decimal.NewFromInt(20), DurationMinutes: 30}}
	res := f.seed(t, "BK-2025-0001", 14, 16, domain.StatusConfirmed, items)

	resp, err := f.uc.Execute(context.Background(), &Request{ReservationID: res.ID})
	require.NoError(t, err)

	assert.Empty(t, resp.Reservation.LineItems)
	assert.True(t, resp.Reservation.TimeRange.End().Equal(onDay(15)))
	assert.True(t, resp.Reservation.TotalAmount.Equal(decimal.NewFromInt(100)), "package price keeps its snapshot")
}

func TestExecute_ExtendedWindowConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.seed(t, "BK-2025-0001", 14, 15, domain.StatusPending, nil)
	f.seed(t, "BK-2025-0002", 15, 16, domain.StatusConfirmed, nil)

	_, err := f.uc.Execute(ctx, &Request{
		ReservationID: res.ID,
		AddOns:        []scheduling.Selection{{AddOnID: flashID, Quantity: 1}},
	})

	var unavailable *domain.StaffUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, domain.ReasonBusy, unavailable.Reason)

	stored, err := f.store.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.LineItems)
	assert.True(t, stored.TimeRange.End().Equal(onDay(15)))
}

func TestExecute_RejectsWholeBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.seed(t, "BK-2025-0001", 14, 15, domain.StatusPending, nil)

	_, err := f.uc.Execute(ctx, &Request{
		ReservationID: res.ID,
		AddOns:        []scheduling.Selection{{AddOnID: albumID, Quantity: 1}, {AddOnID: retiredID, Quantity: 1}},
	})

	var invalid *domain.InvalidAddOnError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, retiredID, invalid.AddOnID)
	assert.Equal(t, domain.AddOnInactive, invalid.Reason)

	_, err = f.uc.Execute(ctx, &Request{
		ReservationID: res.ID,
		AddOns:        []scheduling.Selection{{AddOnID: albumID, Quantity: 1}},
		TotalAmount:   ptr.Ptr(decimal.NewFromInt(100)),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	stored, err := f.store.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.LineItems)
	assert.Empty(t, stored.Timeline)
}

func TestExecute_ClosedReservation(t *testing.T) {
	f := newFixture(t)
	res := f.seed(t, "BK-2025-0001", 14, 15, domain.StatusCompleted, nil)

	_, err := f.uc.Execute(context.Background(), &Request{
		ReservationID: res.ID,
		AddOns:        []scheduling.Selection{{AddOnID: albumID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrReservationClosed)
}

func TestExecute_AssignsStaffToUnassignedReservation(t *testing.T) {
	f := newFixture(t)
	window, err := domain.NewTimeRange(onDay(14), onDay(15))
	require.NoError(t, err)
	res, err := f.store.Insert(context.Background(), &domain.Reservation{
		BookingCode:   "BK-2025-0001",
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentPending,
		TimeRange:     window,
		LocationID:    ptr.Ptr(locationID),
		PackageID:     1,
		Customer:      domain.Customer{Name: "Jane Doe", Email: "jane@example.com"},
		TotalAmount:   decimal.NewFromInt(100),
		CreatedAt:     now.Add(-time.Hour),
		UpdatedAt:     now.Add(-time.Hour),
	})
	require.NoError(t, err)

	resp, err := f.uc.Execute(context.Background(), &Request{
		ReservationID: res.ID,
		AddOns:        []scheduling.Selection{{AddOnID: albumID, Quantity: 1}},
		ActorID:       3,
	})
	require.NoError(t, err)

	got := resp.Reservation
	require.NotNil(t, got.StaffID)
	assert.Equal(t, annaID, *got.StaffID)

	require.Len(t, got.Timeline, 2)
	assert.Equal(t, domain.ActionAddOnsUpdated, got.Timeline[0].Metadata.Action())
	assigned, ok := got.Timeline[1].Metadata.(domain.StaffAssignedMetadata)
	require.True(t, ok)
	assert.Nil(t, assigned.FromStaffID)
	assert.Equal(t, annaID, assigned.ToStaffID)
	assert.Equal(t, int64(3), assigned.ActorID)

	assert.Len(t, f.events.Events(), 2)
}
