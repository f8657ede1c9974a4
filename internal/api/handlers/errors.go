package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// Коды ошибок планировщика
const (
	CodeValidationFailed        = "validation_failed"
	CodeStaffUnavailable        = "staff_unavailable"
	CodeNoAvailableStaff        = "no_available_staff"
	CodeLocationUnavailable     = "location_unavailable"
	CodeInvalidAddOn            = "invalid_add_on"
	CodeInvalidStatusTransition = "invalid_status_transition"
	CodeReservationClosed       = "reservation_closed"
	CodeBookingCodeTaken        = "booking_code_taken"
	CodeConcurrentModification  = "concurrent_modification"
)

const (
	msgValidationFailed        = "некорректные данные запроса"
	msgNotFound                = "объект не найден"
	msgInactive                = "объект отключен"
	msgStaffUnavailable        = "выбранный сотрудник недоступен в это время"
	msgNoAvailableStaff        = "нет свободных сотрудников на выбранное время"
	msgLocationUnavailable     = "локация недоступна в выбранное время"
	msgInvalidAddOn            = "некорректный набор дополнений"
	msgInvalidStatusTransition = "недопустимая смена статуса"
	msgReservationClosed       = "бронирование закрыто для изменений"
	msgBookingCodeTaken        = "не удалось выдать номер бронирования, повторите запрос"
	msgConcurrentModification  = "бронирование было изменено параллельно, повторите запрос"
)

// RespondDomainError отвечает клиенту по ошибке доменной таксономии.
// Возвращает false, если err не доменная ошибка: тогда вызывающий логирует ее и отвечает 500.
func RespondDomainError(w http.ResponseWriter, err error) bool {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.EntityNotFoundError
		inactiveErr   *domain.InactiveEntityError
		staffErr      *domain.StaffUnavailableError
		noStaffErr    *domain.NoAvailableStaffError
		locationErr   *domain.LocationUnavailableError
		addOnErr      *domain.InvalidAddOnError
		transitionErr *domain.InvalidStatusTransitionError
		closedErr     *domain.ReservationClosedError
		uniqueErr     *domain.UniquenessError
	)

	switch {
	case errors.As(err, &validationErr):
		RespondErrorCode(w, http.StatusBadRequest, CodeValidationFailed, msgValidationFailed, map[string]interface{}{
			"field":  validationErr.Field,
			"reason": validationErr.Reason,
		})

	case errors.As(err, &notFoundErr):
		details := map[string]interface{}{"entity": notFoundErr.Entity}
		if notFoundErr.Key != "" {
			details["key"] = notFoundErr.Key
		} else {
			details["id"] = notFoundErr.ID
		}
		RespondErrorCode(w, http.StatusNotFound, string(notFoundErr.Entity)+"_not_found", msgNotFound, details)

	case errors.As(err, &inactiveErr):
		RespondErrorCode(w, http.StatusUnprocessableEntity, string(inactiveErr.Entity)+"_inactive", msgInactive, map[string]interface{}{
			"entity": inactiveErr.Entity,
			"id":     inactiveErr.ID,
		})

	case errors.As(err, &staffErr):
		RespondErrorCode(w, http.StatusConflict, CodeStaffUnavailable, msgStaffUnavailable, map[string]interface{}{
			"staffId":   staffErr.StaffID,
			"staffName": staffErr.StaffName,
			"reason":    staffErr.Reason,
			"startTime": staffErr.Window.Start().Format(time.RFC3339),
			"endTime":   staffErr.Window.End().Format(time.RFC3339),
		})

	case errors.As(err, &noStaffErr):
		details := map[string]interface{}{
			"candidates": noStaffErr.Candidates,
			"startTime":  noStaffErr.Window.Start().Format(time.RFC3339),
			"endTime":    noStaffErr.Window.End().Format(time.RFC3339),
		}
		if noStaffErr.LocationID != nil {
			details["locationId"] = *noStaffErr.LocationID
		}
		RespondErrorCode(w, http.StatusConflict, CodeNoAvailableStaff, msgNoAvailableStaff, details)

	case errors.As(err, &locationErr):
		RespondErrorCode(w, http.StatusConflict, CodeLocationUnavailable, msgLocationUnavailable, map[string]interface{}{
			"locationId": locationErr.LocationID,
			"date":       locationErr.Date.Format(domain.DateFormat),
			"reason":     locationErr.Reason,
		})

	case errors.As(err, &addOnErr):
		RespondErrorCode(w, http.StatusUnprocessableEntity, CodeInvalidAddOn, msgInvalidAddOn, map[string]interface{}{
			"addOnId": addOnErr.AddOnID,
			"reason":  addOnErr.Reason,
		})

	case errors.As(err, &transitionErr):
		RespondErrorCode(w, http.StatusConflict, CodeInvalidStatusTransition, msgInvalidStatusTransition, map[string]interface{}{
			"kind": transitionErr.Kind,
			"from": transitionErr.From,
			"to":   transitionErr.To,
		})

	case errors.As(err, &closedErr):
		RespondErrorCode(w, http.StatusConflict, CodeReservationClosed, msgReservationClosed, map[string]interface{}{
			"reservationId": closedErr.ReservationID,
			"status":        closedErr.Status,
		})

	case errors.As(err, &uniqueErr):
		w.Header().Set("Retry-After", "1")
		RespondErrorCode(w, http.StatusServiceUnavailable, CodeBookingCodeTaken, msgBookingCodeTaken, map[string]interface{}{
			"attempts": uniqueErr.Attempts,
		})

	case errors.Is(err, domain.ErrConcurrentModification):
		RespondErrorCode(w, http.StatusConflict, CodeConcurrentModification, msgConcurrentModification, nil)

	default:
		return false
	}

	return true
}
