package eventbus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

func TestNewEvents(t *testing.T) {
	start := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	window, err := domain.NewTimeRange(start, start.Add(time.Hour))
	require.NoError(t, err)

	staffID := int64(3)
	res := &domain.Reservation{
		ID:            11,
		BookingCode:   "BK-2025-0007",
		Status:        domain.StatusConfirmed,
		PaymentStatus: domain.PaymentPending,
		StaffID:       &staffID,
		TimeRange:     window,
	}
	entries := []domain.TimelineEntry{
		domain.NewTimelineEntry(domain.StatusChangedMetadata{From: domain.StatusPending, To: domain.StatusConfirmed, ActorID: 9}, start),
	}

	events, err := NewEvents(res, entries)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "reservation.status_changed", ev.RoutingKey())
	assert.Equal(t, int64(11), ev.ReservationID)
	assert.Equal(t, "CONFIRMED", ev.Status)

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(ev.Metadata, &meta))
	assert.Equal(t, "PENDING", meta["from"])
	assert.Equal(t, float64(9), meta["actorId"])
}

func TestRecorder(t *testing.T) {
	start := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	window, err := domain.NewTimeRange(start, start.Add(time.Hour))
	require.NoError(t, err)

	rec := &Recorder{}
	res := &domain.Reservation{ID: 1, TimeRange: window}
	entry := domain.NewTimelineEntry(domain.CreatedMetadata{BookingCode: "BK-2025-0001"}, start)

	require.NoError(t, rec.Publish(context.Background(), res, []domain.TimelineEntry{entry}))
	require.Len(t, rec.Events(), 1)
	assert.Equal(t, "reservation.created", rec.Events()[0].Type)
}
