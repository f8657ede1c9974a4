package create_reservation

import (
	"net/http"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/service/reservations/models"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /reservations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := handlers.ValidateStruct(&req); err != nil {
		h.logger.Warn("POST /reservations - Validation failed: user_id=%d, %v", userID, err)
		handlers.RespondDomainError(w, err)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID))
	if err != nil {
		if handlers.RespondDomainError(w, err) {
			if domain.IsSchedulingConflict(err) {
				h.logger.Warn("POST /reservations - Scheduling conflict: user_id=%d, package_id=%d, staff_id=%d, %v",
					userID, req.PackageID, ptr.Deref(req.StaffID, 0), err)
			} else {
				h.logger.Warn("POST /reservations - Rejected: user_id=%d, package_id=%d, %v", userID, req.PackageID, err)
			}
			return
		}
		h.logger.Error("POST /reservations - Failed to create reservation: user_id=%d, package_id=%d, error=%v",
			userID, req.PackageID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /reservations - Reservation created successfully: reservation_id=%d, code=%s, user_id=%d",
		result.Reservation.ID, result.Reservation.BookingCode, userID)
	handlers.RespondJSON(w, http.StatusCreated, models.FromDomainReservation(result.Reservation))
}
