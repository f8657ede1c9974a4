package planner

import (
	"context"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// CatalogRepository интерфейс чтения каталога
type CatalogRepository interface {
	GetLocation(ctx context.Context, id int64) (*domain.Location, error)
	GetStaff(ctx context.Context, id int64) (*domain.Staff, error)
	ListActiveStaff(ctx context.Context, locationID *int64) ([]*domain.Staff, error)
}

// ReservationRepository интерфейс чтения бронирований для проверки конфликтов
type ReservationRepository interface {
	FindActive(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error)
	CountForCapacity(ctx context.Context, locationID int64, day domain.TimeRange, excludeID int64) (int, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
