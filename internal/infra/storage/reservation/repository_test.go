package reservation

import (
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
)

func window(t *testing.T, fromHour, toHour int) domain.TimeRange {
	t.Helper()
	r, err := domain.NewTimeRange(
		time.Date(2025, 6, 15, fromHour, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 15, toHour, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return r
}

func TestFindActiveQuery(t *testing.T) {
	w := window(t, 14, 16)

	query, args, err := findActiveQuery(domain.ReservationFilter{
		StaffIDs:             []int64{1, 2},
		Window:               &w,
		ExcludeReservationID: 7,
	}, true).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "FROM reservations")
	assert.Contains(t, query, "status IN ($1,$2,$3)")
	assert.Contains(t, query, "staff_id IN ($4,$5)")
	assert.Contains(t, query, "start_at < $6")
	assert.Contains(t, query, "end_at > $7")
	assert.Contains(t, query, "id <> $8")
	assert.Contains(t, query, "ORDER BY start_at ASC, id ASC")
	assert.Contains(t, query, "FOR UPDATE")

	require.Len(t, args, 8)
	assert.Equal(t, []interface{}{"PENDING", "CONFIRMED", "IN_PROGRESS"}, args[:3])
	assert.Equal(t, w.End(), args[5], "existing start must be before the window end")
	assert.Equal(t, w.Start(), args[6], "existing end must be after the window start")
}

func TestFindActiveQuery_OutsideTransaction(t *testing.T) {
	query, args, err := findActiveQuery(domain.ReservationFilter{
		Statuses:   []domain.ReservationStatus{domain.StatusCompleted},
		LocationID: ptr.Ptr(int64(3)),
	}, false).ToSql()
	require.NoError(t, err)

	assert.NotContains(t, query, "FOR UPDATE")
	assert.NotContains(t, query, "staff_id")
	assert.Contains(t, query, "location_id = $2")
	assert.Equal(t, []interface{}{"COMPLETED", int64(3)}, args)
}

func TestCapacityQuery(t *testing.T) {
	day := domain.DayOf(time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC))

	query, args, err := capacityQuery(3, day, 0).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "SELECT COUNT(*) FROM reservations")
	assert.Contains(t, query, "status NOT IN ($2)")
	assert.Contains(t, query, "start_at >= $3")
	assert.Contains(t, query, "start_at < $4")
	assert.NotContains(t, query, "id <>")
	assert.Equal(t, []interface{}{int64(3), "CANCELLED", day.Start(), day.End()}, args)

	query, args, err = capacityQuery(3, day, 9).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "id <> $5")
	assert.Len(t, args, 5)
}

func TestMaxSequenceQuery(t *testing.T) {
	query, args, err := maxSequenceQuery(2025).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "SUBSTRING(booking_code FROM $1)")
	assert.Contains(t, query, "booking_code LIKE $2")
	assert.Equal(t, []interface{}{len("BK-2025-") + 1, "BK-2025-%"}, args)
}

func TestApplyQuery(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	confirmed := domain.StatusConfirmed
	w := window(t, 16, 17)

	query, args, err := applyQuery(5, domain.ReservationPatch{
		ExpectedStatus: domain.StatusPending,
		Status:         &confirmed,
		Window:         &w,
		StaffID:        ptr.Ptr(int64(2)),
		TotalAmount:    ptr.Ptr(decimal.NewFromInt(150)),
		UpdatedAt:      now,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "UPDATE reservations SET updated_at = $1, status = $2, start_at = $3, end_at = $4, staff_id = $5, total_amount = $6")
	assert.Contains(t, query, "WHERE id = $7 AND status = $8")
	require.Len(t, args, 8)
	assert.Equal(t, int64(5), args[6])
	assert.Equal(t, domain.StatusPending, args[7])

	query, _, err = applyQuery(5, domain.ReservationPatch{
		ExpectedStatus:  domain.StatusConfirmed,
		ExpectedPayment: ptr.Ptr(domain.PaymentPending),
		UpdatedAt:       now,
	}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "payment_status = $4")
	assert.NotContains(t, query, "staff_id")
}

func TestMapWriteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "booking code collision",
			err:  &pq.Error{Code: pqUniqueViolation, Constraint: bookingCodeConstraint},
			want: ErrBookingCodeTaken,
		},
		{
			name: "staff overlap",
			err:  &pq.Error{Code: pqExclusionViolation, Constraint: "reservations_staff_no_overlap"},
			want: ErrStaffOverlap,
		},
		{
			name: "other unique constraint",
			err:  &pq.Error{Code: pqUniqueViolation, Constraint: "reservation_line_items_pkey"},
			want: ErrExecQuery,
		},
		{
			name: "plain error",
			err:  errors.New("connection reset"),
			want: ErrExecQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapWriteError("Insert", tt.err), tt.want)
		})
	}
}

func TestMapWriteError_KeepsSerializationFailure(t *testing.T) {
	err := mapWriteError("Apply", &pq.Error{Code: "40001"})

	var pqErr *pq.Error
	require.ErrorAs(t, err, &pqErr)
	assert.Equal(t, pq.ErrorCode("40001"), pqErr.Code)
}
