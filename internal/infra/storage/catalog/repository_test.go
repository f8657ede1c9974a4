package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

func TestParseAvailability(t *testing.T) {
	a, err := parseAvailability(
		[]byte(`{"monday":{"open":"09:00","close":"18:00"},"sunday":null}`),
		[]string{"2025-12-31", "2026-01-01"},
	)
	require.NoError(t, err)

	monday, ok := a.WorkingHours.For(time.Monday)
	require.True(t, ok)
	assert.Equal(t, types.TimeString("09:00"), monday.Open)
	assert.Equal(t, types.TimeString("18:00"), monday.Close)

	_, ok = a.WorkingHours.For(time.Sunday)
	assert.False(t, ok)

	assert.True(t, a.IsBlackout(time.Date(2026, 1, 1, 15, 0, 0, 0, time.UTC)))
	assert.False(t, a.IsBlackout(time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)))
}

func TestParseAvailability_Invalid(t *testing.T) {
	_, err := parseAvailability([]byte(`{"funday":{"open":"09:00","close":"18:00"}}`), nil)
	assert.Error(t, err)

	_, err = parseAvailability(nil, []string{"31.12.2025"})
	assert.Error(t, err)

	a, err := parseAvailability(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, a.WorkingHours)
}
