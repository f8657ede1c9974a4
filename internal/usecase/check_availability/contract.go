package check_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/service/planner"
)

// CatalogRepository интерфейс чтения каталога
type CatalogRepository interface {
	GetPackage(ctx context.Context, id int64) (*domain.Package, error)
	GetAddOns(ctx context.Context, ids []int64) (map[int64]*domain.AddOn, error)
}

// Planner интерфейс проверки окон
type Planner interface {
	Prepare(ctx context.Context, req planner.Request) (*planner.Inputs, error)
	Available(ctx context.Context, in *planner.Inputs) ([]*domain.Staff, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
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
