package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeline_RoundTripByAction(t *testing.T) {
	staff := int64(7)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	payloads := []TimelineMetadata{
		CreatedMetadata{
			BookingCode: "BK-2025-0001",
			PackageID:   3,
			StaffID:     &staff,
			Start:       now,
			End:         now.Add(time.Hour),
			TotalAmount: decimal.RequireFromString("150.50"),
			LineItems: []LineItem{
				{AddOnID: 1, Name: "Extra prints", Quantity: 2, UnitPrice: decimal.RequireFromString("10.25")},
			},
		},
		StatusChangedMetadata{From: StatusPending, To: StatusConfirmed, ActorID: 42},
		PaymentStatusChangedMetadata{From: PaymentPending, To: PaymentPartial, Reference: "dep-1"},
		StaffAssignedMetadata{FromStaffID: &staff, ToStaffID: 9},
		AddOnsUpdatedMetadata{TotalBefore: decimal.NewFromInt(100), TotalAfter: decimal.NewFromInt(120)},
		RescheduledMetadata{FromStart: now, FromEnd: now.Add(time.Hour), ToStart: now.Add(2 * time.Hour), ToEnd: now.Add(3 * time.Hour)},
		AdminOverrideMetadata{From: StatusConfirmed, To: StatusPending, Reason: "operator correction", ActorID: 1},
	}

	for _, meta := range payloads {
		entry := NewTimelineEntry(meta, now)
		assert.Equal(t, meta.Action(), entry.Action)
		assert.NotEmpty(t, entry.Description)

		raw, err := EncodeMetadata(entry.Metadata)
		require.NoError(t, err)

		decoded, err := DecodeMetadata(entry.Action, raw)
		require.NoError(t, err)
		assert.Equal(t, meta.Action(), decoded.Action())
	}
}

func TestTimeline_DecodeKeepsPayload(t *testing.T) {
	raw, err := EncodeMetadata(AdminOverrideMetadata{From: StatusConfirmed, To: StatusPending, Reason: "fix", ActorID: 5})
	require.NoError(t, err)

	decoded, err := DecodeMetadata(ActionAdminOverride, raw)
	require.NoError(t, err)

	override, ok := decoded.(AdminOverrideMetadata)
	require.True(t, ok)
	assert.Equal(t, StatusConfirmed, override.From)
	assert.Equal(t, StatusPending, override.To)
	assert.Equal(t, "fix", override.Reason)
	assert.Equal(t, int64(5), override.ActorID)
}

func TestTimeline_DecodeUnknownAction(t *testing.T) {
	_, err := DecodeMetadata("SOMETHING", []byte(`{}`))
	assert.Error(t, err)
}

func TestErrors_Classification(t *testing.T) {
	window, err := NewTimeRange(at(10, 0), at(11, 0))
	require.NoError(t, err)

	staffErr := &StaffUnavailableError{StaffID: 1, StaffName: "Anna", Window: window, Reason: ReasonBusy}
	assert.True(t, IsSchedulingConflict(staffErr))
	assert.True(t, IsClientError(staffErr))
	assert.False(t, IsRetryable(staffErr))

	assert.True(t, IsSchedulingConflict(&NoAvailableStaffError{Window: window}))
	assert.True(t, IsSchedulingConflict(&LocationUnavailableError{LocationID: 1, Date: at(0, 0), Reason: ReasonCapacityReached}))
	assert.True(t, IsNotFound(&EntityNotFoundError{Entity: EntityPackage, ID: 1}))
	assert.True(t, IsRetryable(&UniquenessError{BookingCode: "BK-2025-0001"}))
	assert.False(t, IsClientError(&UniquenessError{}))
}
