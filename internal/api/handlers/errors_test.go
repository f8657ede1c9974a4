package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

func TestRespondDomainError(t *testing.T) {
	window, err := domain.NewTimeRange(
		time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 15, 15, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &domain.ValidationError{Field: "packageId", Reason: domain.ReasonRequired}, http.StatusBadRequest, CodeValidationFailed},
		{"not found", &domain.EntityNotFoundError{Entity: domain.EntityReservation, ID: 5}, http.StatusNotFound, "reservation_not_found"},
		{"inactive", &domain.InactiveEntityError{Entity: domain.EntityPackage, ID: 2}, http.StatusUnprocessableEntity, "package_inactive"},
		{"staff busy", &domain.StaffUnavailableError{StaffID: 1, StaffName: "Anna", Window: window, Reason: domain.ReasonBusy}, http.StatusConflict, CodeStaffUnavailable},
		{"no staff", &domain.NoAvailableStaffError{Window: window, Candidates: 3}, http.StatusConflict, CodeNoAvailableStaff},
		{"location", &domain.LocationUnavailableError{LocationID: 10, Date: window.Start(), Reason: domain.ReasonBlackout}, http.StatusConflict, CodeLocationUnavailable},
		{"add-on", &domain.InvalidAddOnError{AddOnID: 100, Reason: domain.AddOnInactive}, http.StatusUnprocessableEntity, CodeInvalidAddOn},
		{"transition", &domain.InvalidStatusTransitionError{Kind: domain.TransitionStatus, From: "CANCELLED", To: "CONFIRMED"}, http.StatusConflict, CodeInvalidStatusTransition},
		{"closed", &domain.ReservationClosedError{ReservationID: 5, Status: domain.StatusCompleted}, http.StatusConflict, CodeReservationClosed},
		{"uniqueness", &domain.UniquenessError{BookingCode: "BK-2025-0001", Attempts: 3}, http.StatusServiceUnavailable, CodeBookingCodeTaken},
		{"concurrent", fmt.Errorf("apply: %w", domain.ErrConcurrentModification), http.StatusConflict, CodeConcurrentModification},
		{"wrapped", fmt.Errorf("use case: %w", &domain.ValidationError{Field: "endTime", Reason: domain.ReasonStartNotBeforeEnd}), http.StatusBadRequest, CodeValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.True(t, RespondDomainError(rec, tt.err))
			assert.Equal(t, tt.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestRespondDomainError_UnknownError(t *testing.T) {
	rec := httptest.NewRecorder()
	assert.False(t, RespondDomainError(rec, errors.New("connection reset")))
	assert.Equal(t, 0, rec.Body.Len())
}

func TestRespondDomainError_StaffDetails(t *testing.T) {
	window, err := domain.NewTimeRange(
		time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 15, 15, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	RespondDomainError(rec, &domain.StaffUnavailableError{StaffID: 1, StaffName: "Anna", Window: window, Reason: domain.ReasonOutsideHours})

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Anna", body.Details["staffName"])
	assert.Equal(t, "outside_hours", body.Details["reason"])
	assert.Equal(t, "2025-06-15T14:00:00Z", body.Details["startTime"])
}

func TestValidateStruct(t *testing.T) {
	type payload struct {
		Name   string `json:"name" validate:"required,max=5"`
		Amount int    `json:"amount" validate:"gt=0"`
	}

	var vErr *domain.ValidationError

	err := ValidateStruct(&payload{Amount: 1})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "name", vErr.Field)
	assert.Equal(t, domain.ReasonRequired, vErr.Reason)

	err = ValidateStruct(&payload{Name: "too long", Amount: 1})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, domain.ReasonTooLong, vErr.Reason)

	err = ValidateStruct(&payload{Name: "ok"})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "amount", vErr.Field)
	assert.Equal(t, domain.ReasonMustBePositive, vErr.Reason)

	assert.NoError(t, ValidateStruct(&payload{Name: "ok", Amount: 3}))
}
