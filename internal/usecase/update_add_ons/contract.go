package update_add_ons

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/service/planner"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	Apply(ctx context.Context, id int64, patch domain.ReservationPatch) error
}

// CatalogRepository интерфейс чтения каталога дополнений
type CatalogRepository interface {
	GetAddOns(ctx context.Context, ids []int64) (map[int64]*domain.AddOn, error)
}

// Planner интерфейс проверки окна
type Planner interface {
	Prepare(ctx context.Context, req planner.Request) (*planner.Inputs, error)
	Decide(ctx context.Context, in *planner.Inputs) (*domain.Staff, error)
}

// Locker интерфейс блокировки по ключам
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
	ObserveConflict(reason string)
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
