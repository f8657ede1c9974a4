package get_location

import (
	"context"

	"github.com/m04kA/SMC-StudioBooking/internal/service/catalog/models"
)

type CatalogService interface {
	GetLocation(ctx context.Context, id int64) (*models.LocationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
