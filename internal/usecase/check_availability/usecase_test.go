package check_availability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-StudioBooking/internal/scheduling"
	"github.com/m04kA/SMC-StudioBooking/internal/service/planner"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

const (
	locationID = int64(10)
	annaID     = int64(1)
	borisID    = int64(2)
)

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
	store *memory.Store
	uc    *UseCase
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	store := memory.NewStore()
	store.PutPackage(domain.Package{ID: 1, Name: "Portrait", DurationMinutes: 60, Price: decimal.NewFromInt(100), IsActive: true})
	store.PutAddOn(domain.AddOn{ID: 100, Name: "Album", Price: decimal.NewFromInt(40), IsActive: true})
	store.PutLocation(domain.Location{
		ID:           locationID,
		Slug:         "downtown",
		Name:         "Downtown",
		IsActive:     true,
		Availability: domain.Availability{WorkingHours: everyDay("09:00", "12:00")},
	})
	for _, s := range []domain.Staff{{ID: annaID, Name: "Anna"}, {ID: borisID, Name: "Boris"}} {
		s.IsActive = true
		s.PrimaryLocationID = locationID
		store.PutStaff(s)
	}

	log := logger.NewNop()
	uc := NewUseCase(store, planner.NewPlanner(store, store, log), memory.TxManager{}, log, time.UTC)
	uc.timeProvider = fixedTime{now: now}

	return &fixture{store: store, uc: uc}
}

func (f *fixture) book(t *testing.T, staffID int64, from, to int) {
	t.Helper()
	window, err := domain.NewTimeRange(onDay(from), onDay(to))
	require.NoError(t, err)
	_, err = f.store.Insert(context.Background(), &domain.Reservation{
		BookingCode: fmt.Sprintf("BK-2025-%04d", from),
		Status:      domain.StatusConfirmed,
		TimeRange:   window,
		LocationID:  ptr.Ptr(locationID),
		StaffID:     ptr.Ptr(staffID),
	})
	require.NoError(t, err)
}

func staffIDs(staff []*domain.Staff) []int64 {
	ids := make([]int64, 0, len(staff))
	for _, s := range staff {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestExecute_SingleWindow(t *testing.T) {
	f := newFixture(t, onDay(8))
	f.book(t, annaID, 9, 10)

	resp, err := f.uc.Execute(context.Background(), &Request{
		PackageID:  1,
		Start:      ptr.Ptr(onDay(9)),
		LocationID: ptr.Ptr(locationID),
		AddOns:     []scheduling.Selection{{AddOnID: 100, Quantity: 1}},
	})
	require.NoError(t, err)

	require.Len(t, resp.Windows, 1)
	assert.Equal(t, []int64{borisID}, staffIDs(resp.Windows[0].Staff))
	assert.Empty(t, resp.Windows[0].Reason)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(140)))
}

func TestExecute_WindowRejectedByLocation(t *testing.T) {
	f := newFixture(t, onDay(8))

	resp, err := f.uc.Execute(context.Background(), &Request{
		PackageID:  1,
		Start:      ptr.Ptr(onDay(11)),
		End:        ptr.Ptr(onDay(13)),
		LocationID: ptr.Ptr(locationID),
	})
	require.NoError(t, err)

	require.Len(t, resp.Windows, 1)
	assert.Equal(t, domain.ReasonOutsideHours, resp.Windows[0].Reason)
	assert.Empty(t, resp.Windows[0].Staff)
}

func TestExecute_DayGrid(t *testing.T) {
	f := newFixture(t, onDay(8))
	f.book(t, annaID, 10, 11)

	resp, err := f.uc.Execute(context.Background(), &Request{
		PackageID:  1,
		Date:       ptr.Ptr(onDay(0)),
		LocationID: ptr.Ptr(locationID),
	})
	require.NoError(t, err)

	require.Len(t, resp.Windows, 3)
	assert.True(t, resp.Windows[0].Range.Start().Equal(onDay(9)))
	assert.Equal(t, []int64{annaID, borisID}, staffIDs(resp.Windows[0].Staff))
	assert.Equal(t, []int64{borisID}, staffIDs(resp.Windows[1].Staff))
	assert.Equal(t, []int64{annaID, borisID}, staffIDs(resp.Windows[2].Staff))
}

func TestExecute_DayGridSkipsPast(t *testing.T) {
	f := newFixture(t, onDay(10).Add(30*time.Minute))

	resp, err := f.uc.Execute(context.Background(), &Request{
		PackageID:  1,
		Date:       ptr.Ptr(onDay(0)),
		LocationID: ptr.Ptr(locationID),
	})
	require.NoError(t, err)

	require.Len(t, resp.Windows, 1)
	assert.True(t, resp.Windows[0].Range.Start().Equal(onDay(11)))
}

func TestExecute_Validation(t *testing.T) {
	f := newFixture(t, onDay(8))
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, &Request{PackageID: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.Execute(ctx, &Request{PackageID: 1, Date: ptr.Ptr(onDay(0))})
	assert.ErrorIs(t, err, domain.ErrValidation, "day grid needs a location")

	_, err = f.uc.Execute(ctx, &Request{PackageID: 7, Start: ptr.Ptr(onDay(9))})
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)

	_, err = f.uc.Execute(ctx, &Request{PackageID: 1, Start: ptr.Ptr(onDay(9)), LocationID: ptr.Ptr(int64(99))})
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
}
