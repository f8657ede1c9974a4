package check_availability

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/scheduling"
)

func TestParseQuery(t *testing.T) {
	q := url.Values{}
	q.Set("packageId", "1")
	q.Set("startTime", "2025-06-15T14:00:00+03:00")
	q.Set("locationId", "10")
	q.Set("addOns", "100:2, 101")

	req, err := parseQuery(q)
	require.NoError(t, err)

	assert.Equal(t, int64(1), req.PackageID)
	require.NotNil(t, req.Start)
	assert.True(t, req.Start.Equal(time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC)))
	assert.Nil(t, req.End)
	assert.Nil(t, req.Date)
	require.NotNil(t, req.LocationID)
	assert.Equal(t, int64(10), *req.LocationID)
	assert.Nil(t, req.StaffID)
	assert.Equal(t, []scheduling.Selection{{AddOnID: 100, Quantity: 2}, {AddOnID: 101, Quantity: 1}}, req.AddOns)
}

func TestParseQuery_DayGrid(t *testing.T) {
	req, err := parseQuery(url.Values{"packageId": {"1"}, "date": {"2025-06-15"}, "locationId": {"10"}})
	require.NoError(t, err)
	require.NotNil(t, req.Date)
	assert.Equal(t, "2025-06-15", req.Date.Format("2006-01-02"))
	assert.Nil(t, req.Start)
}

func TestParseQuery_Invalid(t *testing.T) {
	tests := []url.Values{
		{},
		{"packageId": {"x"}},
		{"packageId": {"1"}, "startTime": {"15:00"}},
		{"packageId": {"1"}, "date": {"15.06.2025"}},
		{"packageId": {"1"}, "staffId": {"anna"}},
		{"packageId": {"1"}, "addOns": {"100:0"}},
		{"packageId": {"1"}, "addOns": {"flash:1"}},
	}

	for _, q := range tests {
		_, err := parseQuery(q)
		assert.Error(t, err, q.Encode())
	}
}
