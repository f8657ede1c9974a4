package create_reservation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/locks"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-StudioBooking/internal/integrations/eventbus"
	"github.com/m04kA/SMC-StudioBooking/internal/service/planner"
	createReservation "github.com/m04kA/SMC-StudioBooking/internal/usecase/create_reservation"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/metrics"
)

func newRouter(t *testing.T) *mux.Router {
	t.Helper()

	store := memory.NewStore()
	store.PutPackage(domain.Package{ID: 1, Name: "Portrait", DurationMinutes: 60, Price: decimal.NewFromInt(100), IsActive: true})
	store.PutLocation(domain.Location{ID: 10, Slug: "downtown", Name: "Downtown", IsActive: true})
	store.PutStaff(domain.Staff{ID: 1, Name: "Anna", IsActive: true, PrimaryLocationID: 10})

	log := logger.NewNop()
	uc := createReservation.NewUseCase(
		store,
		store,
		planner.NewPlanner(store, store, log),
		locks.NewLocal(),
		memory.TxManager{},
		eventbus.Nop{},
		metrics.Nop{},
		log,
		createReservation.Options{},
	)

	r := mux.NewRouter()
	r.Handle("/api/v1/reservations", middleware.Auth(http.HandlerFunc(NewHandler(uc, log).Handle))).Methods(http.MethodPost)
	return r
}

func post(r http.Handler, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

const validBody = `{
	"packageId": 1,
	"startTime": "2099-06-15T14:00:00Z",
	"locationId": 10,
	"staffId": 1,
	"customer": {"name": "Ivan Petrov", "email": "ivan@example.com"}
}`

func TestHandle_CreatesAndRejectsOverlap(t *testing.T) {
	r := newRouter(t)

	rec := post(r, "42", validBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		BookingCode string          `json:"bookingCode"`
		Status      string          `json:"status"`
		EndTime     time.Time       `json:"endTime"`
		TotalAmount decimal.Decimal `json:"totalAmount"`
		Timeline    []struct {
			Action string `json:"action"`
		} `json:"timeline"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created.BookingCode, "BK-"))
	assert.Equal(t, string(domain.StatusPending), created.Status)
	assert.Equal(t, time.Date(2099, 6, 15, 15, 0, 0, 0, time.UTC), created.EndTime.UTC())
	assert.True(t, decimal.NewFromInt(100).Equal(created.TotalAmount))
	require.Len(t, created.Timeline, 1)
	assert.Equal(t, string(domain.ActionCreated), created.Timeline[0].Action)

	rec = post(r, "43", validBody)
	require.Equal(t, http.StatusConflict, rec.Code)

	var errResp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, handlers.CodeStaffUnavailable, errResp.Code)
	assert.Equal(t, "Anna", errResp.Details["staffName"])
	assert.Equal(t, string(domain.ReasonBusy), errResp.Details["reason"])
}

func TestHandle_BadInput(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name   string
		userID string
		body   string
		status int
		code   string
	}{
		{"no user", "", validBody, http.StatusUnauthorized, handlers.CodeUnauthorized},
		{"broken json", "42", `{"packageId": `, http.StatusBadRequest, handlers.CodeBadRequest},
		{"unknown field", "42", `{"packageId": 1, "color": "red"}`, http.StatusBadRequest, handlers.CodeBadRequest},
		{"bad email", "42", strings.Replace(validBody, "ivan@example.com", "not-an-email", 1), http.StatusBadRequest, handlers.CodeValidationFailed},
		{"unknown package", "42", strings.Replace(validBody, `"packageId": 1`, `"packageId": 7`, 1), http.StatusNotFound, "package_not_found"},
		{"end before start", "42", strings.Replace(validBody, `"locationId"`, `"endTime": "2099-06-15T13:00:00Z", "locationId"`, 1), http.StatusBadRequest, handlers.CodeValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(r, tt.userID, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var errResp handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
			assert.Equal(t, tt.code, errResp.Code)
		})
	}
}
