package get_reservation_by_code

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/scheduling"
)

const (
	msgInvalidBookingCode = "некорректный номер бронирования, ожидается BK-YYYY-NNNN"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/reservations/code/{bookingCode}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["bookingCode"]))
	if _, _, err := scheduling.ParseBookingCode(code); err != nil {
		h.logger.Warn("GET /reservations/code/{code} - Invalid booking code: %q", code)
		handlers.RespondBadRequest(w, msgInvalidBookingCode)
		return
	}

	reservation, err := h.service.GetByCode(r.Context(), code)
	if err != nil {
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("GET /reservations/code/{code} - Reservation not available: code=%s, %v", code, err)
			return
		}
		h.logger.Error("GET /reservations/code/{code} - Failed to get reservation: code=%s, error=%v", code, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, reservation)
}
