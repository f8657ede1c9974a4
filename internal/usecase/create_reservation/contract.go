package create_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/service/planner"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Insert(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	MaxBookingSequence(ctx context.Context, year int) (int, error)
}

// CatalogRepository интерфейс чтения каталога
type CatalogRepository interface {
	GetPackage(ctx context.Context, id int64) (*domain.Package, error)
	GetAddOns(ctx context.Context, ids []int64) (map[int64]*domain.AddOn, error)
}

// Planner интерфейс подбора сотрудника
type Planner interface {
	Prepare(ctx context.Context, req planner.Request) (*planner.Inputs, error)
	Decide(ctx context.Context, in *planner.Inputs) (*domain.Staff, error)
}

// Locker интерфейс блокировки по ключам на время check-then-insert
type Locker interface {
	WithLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher интерфейс публикации событий таймлайна
type EventPublisher interface {
	Publish(ctx context.Context, res *domain.Reservation, entries []domain.TimelineEntry) error
}

// MetricsRecorder интерфейс метрик планировщика
type MetricsRecorder interface {
	ObserveCreated()
	ObserveConflict(reason string)
	ObserveCodeRetry()
	ObservePublishFailure()
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
