package get_location

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
)

const (
	msgInvalidLocationID = "некорректный ID локации"
)

type Handler struct {
	service CatalogService
	logger  Logger
}

func NewHandler(service CatalogService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/locations/{locationId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	locationID, err := strconv.ParseInt(mux.Vars(r)["locationId"], 10, 64)
	if err != nil || locationID <= 0 {
		h.logger.Warn("GET /locations/{id} - Invalid location ID: %v", mux.Vars(r)["locationId"])
		handlers.RespondBadRequest(w, msgInvalidLocationID)
		return
	}

	location, err := h.service.GetLocation(r.Context(), locationID)
	if err != nil {
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("GET /locations/{id} - Location not available: location_id=%d, %v", locationID, err)
			return
		}
		h.logger.Error("GET /locations/{id} - Failed to get location: location_id=%d, error=%v", locationID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, location)
}
