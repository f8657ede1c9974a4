package catalog

import (
	"context"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// CatalogRepository интерфейс чтения каталога
type CatalogRepository interface {
	GetLocation(ctx context.Context, id int64) (*domain.Location, error)
	ListActiveStaff(ctx context.Context, locationID *int64) ([]*domain.Staff, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
