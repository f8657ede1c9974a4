package change_status

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/service/reservations/models"
)

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingUserID        = "отсутствует ID пользователя"
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

// Handle POST /api/v1/reservations/{reservationId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := strconv.ParseInt(mux.Vars(r)["reservationId"], 10, 64)
	if err != nil || reservationID <= 0 {
		h.logger.Warn("POST /reservations/{id}/status - Invalid reservation ID: %v", mux.Vars(r)["reservationId"])
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /reservations/{id}/status - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.ChangeStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.ActorID = userID

	if err := handlers.ValidateStruct(&req); err != nil {
		h.logger.Warn("POST /reservations/{id}/status - Validation failed: reservation_id=%d, %v", reservationID, err)
		handlers.RespondDomainError(w, err)
		return
	}

	reservation, err := h.service.ChangeStatus(r.Context(), reservationID, &req)
	if err != nil {
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("POST /reservations/{id}/status - Rejected: reservation_id=%d, to=%s, %v", reservationID, req.Status, err)
			return
		}
		h.logger.Error("POST /reservations/{id}/status - Failed to change status: reservation_id=%d, error=%v", reservationID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /reservations/{id}/status - Status changed: reservation_id=%d, status=%s, user_id=%d",
		reservationID, reservation.Status, userID)
	handlers.RespondJSON(w, http.StatusOK, reservation)
}
