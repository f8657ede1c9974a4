package create_reservation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/scheduling"
)

// Options параметры usecase из конфигурации
type Options struct {
	Location     *time.Location // часовой пояс студии
	CodeAttempts int            // попытки генерации booking code
}

// Request модель запроса на создание бронирования
type Request struct {
	PackageID   int64
	Start       time.Time
	End         *time.Time // если nil, конец = старт + длительность пакета
	LocationID  *int64
	StaffID     *int64 // если nil, сотрудник подбирается автоматически
	Customer    domain.Customer
	Notes       *string
	AddOns      []scheduling.Selection
	TotalAmount *decimal.Decimal // сверяется с пересчитанной суммой
	ActorID     int64
}

// Response модель ответа с созданным бронированием
type Response struct {
	Reservation  *domain.Reservation
	CodeAttempts int // сколько попыток понадобилось для booking code
}
