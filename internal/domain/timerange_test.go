package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 15, hour, minute, 0, 0, time.UTC)
}

func mustRange(t *testing.T, start, end time.Time) TimeRange {
	t.Helper()
	r, err := NewTimeRange(start, end)
	require.NoError(t, err)
	return r
}

func TestNewTimeRange_RejectsMalformed(t *testing.T) {
	_, err := NewTimeRange(at(14, 0), at(14, 0))
	require.ErrorIs(t, err, ErrValidation)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, ReasonStartNotBeforeEnd, vErr.Reason)

	_, err = NewTimeRange(at(15, 0), at(14, 0))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewTimeRange(time.Time{}, at(14, 0))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOverlaps_HalfOpen(t *testing.T) {
	busy := mustRange(t, at(14, 0), at(18, 0))

	cases := []struct {
		name  string
		other TimeRange
		want  bool
	}{
		{"inside", mustRange(t, at(16, 0), at(17, 0)), true},
		{"covering", mustRange(t, at(13, 0), at(19, 0)), true},
		{"partial start", mustRange(t, at(13, 0), at(14, 1)), true},
		{"touching end", mustRange(t, at(18, 0), at(19, 0)), false},
		{"touching start", mustRange(t, at(12, 0), at(14, 0)), false},
		{"disjoint", mustRange(t, at(9, 0), at(10, 0)), false},
		{"identical", mustRange(t, at(14, 0), at(18, 0)), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(busy, tc.other))
			assert.Equal(t, tc.want, Overlaps(tc.other, busy), "overlap must be symmetric")
		})
	}
}

func TestTimeRange_WithinAndDay(t *testing.T) {
	session := mustRange(t, at(10, 0), at(12, 0))
	assert.True(t, session.Within(mustRange(t, at(9, 0), at(18, 0))))
	assert.True(t, session.Within(session))
	assert.False(t, session.Within(mustRange(t, at(11, 0), at(18, 0))))

	day := DayOf(at(10, 30))
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), day.Start())
	assert.Equal(t, 24*time.Hour, day.Duration())
	assert.Equal(t, day.Start(), session.Date())
}

func TestTimeRange_JSON(t *testing.T) {
	r := mustRange(t, at(10, 0), at(11, 0))
	raw, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded TimeRange
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, decoded.Start().Equal(r.Start()))
	assert.True(t, decoded.End().Equal(r.End()))

	bad := []byte(`{"start":"2025-06-15T11:00:00Z","end":"2025-06-15T10:00:00Z"}`)
	assert.ErrorIs(t, json.Unmarshal(bad, &decoded), ErrValidation)
}
