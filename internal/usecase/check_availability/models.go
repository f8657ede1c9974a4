package check_availability

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/scheduling"
)

// Request модель запроса на проверку доступности.
// Либо Start (одно окно), либо Date (сетка окон на день по рабочим часам локации).
type Request struct {
	PackageID  int64
	Start      *time.Time
	End        *time.Time
	Date       *time.Time
	LocationID *int64
	StaffID    *int64
	AddOns     []scheduling.Selection
}

// Response модель ответа с доступностью окон
type Response struct {
	PackageID   int64
	LocationID  *int64
	TotalAmount decimal.Decimal
	Windows     []Window
}

// Window окно и сотрудники, которые могут его взять
type Window struct {
	Range domain.TimeRange
	Staff []*domain.Staff

	// Reason заполнен, если окно отклонено правилами локации
	Reason domain.UnavailableReason
}
