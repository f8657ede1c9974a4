package check_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	catalogRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-StudioBooking/internal/scheduling"
	"github.com/m04kA/SMC-StudioBooking/internal/service/planner"
)

// UseCase use case для проверки доступности окна или дня. Ничего не записывает и не блокирует.
type UseCase struct {
	catalogRepo  CatalogRepository
	planner      Planner
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
	location     *time.Location
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalogRepo CatalogRepository,
	planner Planner,
	txManager TransactionManager,
	logger Logger,
	location *time.Location,
) *UseCase {
	if location == nil {
		location = time.UTC
	}

	return &UseCase{
		catalogRepo:  catalogRepo,
		planner:      planner,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		location:     location,
	}
}

// Execute выполняет use case проверки доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CheckAvailability: package=%d, start=%v, date=%v, add-ons=%d",
		req.PackageID, req.Start, req.Date, len(req.AddOns))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CheckAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now().In(uc.location)

	// 3. Получаем пакет
	pkg, err := uc.catalogRepo.GetPackage(ctx, req.PackageID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrPackageNotFound) {
			uc.logger.Warn("CheckAvailability: package id=%d not found", req.PackageID)
			return nil, &domain.EntityNotFoundError{Entity: domain.EntityPackage, ID: req.PackageID}
		}
		uc.logger.Error("CheckAvailability: failed to get package id=%d: %v", req.PackageID, err)
		return nil, fmt.Errorf("%w: failed to get package: %w", ErrInternal, err)
	}
	if !pkg.IsActive {
		uc.logger.Warn("CheckAvailability: package id=%d is inactive", pkg.ID)
		return nil, &domain.InactiveEntityError{Entity: domain.EntityPackage, ID: pkg.ID}
	}

	// 4. Дополнения влияют на длительность и сумму
	items := []domain.LineItem{}
	if len(req.AddOns) > 0 {
		catalog, err := uc.catalogRepo.GetAddOns(ctx, scheduling.SelectionIDs(req.AddOns))
		if err != nil {
			uc.logger.Error("CheckAvailability: failed to get add-ons: %v", err)
			return nil, fmt.Errorf("%w: failed to get add-ons: %w", ErrInternal, err)
		}
		items, err = scheduling.AttachLineItems(req.AddOns, catalog)
		if err != nil {
			uc.logger.Warn("CheckAvailability: add-ons rejected: %v", err)
			return nil, err
		}
	}

	// 5. Загружаем локацию и кандидатов
	inputs, err := uc.planner.Prepare(ctx, planner.Request{
		LocationID: req.LocationID,
		StaffID:    req.StaffID,
	})
	if err != nil {
		uc.logger.Warn("CheckAvailability: failed to prepare planning: %v", err)
		return nil, err
	}

	// 6. Окна для проверки
	windows, err := uc.windows(req, inputs, pkg, items, now)
	if err != nil {
		uc.logger.Warn("CheckAvailability: invalid window: %v", err)
		return nil, err
	}

	response := &Response{
		PackageID:   pkg.ID,
		LocationID:  req.LocationID,
		TotalAmount: scheduling.TotalAmount(pkg, items),
		Windows:     make([]Window, 0, len(windows)),
	}

	// 7. Проверяем каждое окно на одном снимке
	err = uc.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		for _, w := range windows {
			in := *inputs
			in.Request.Window = w

			staff, err := uc.planner.Available(txCtx, &in)
			var locationErr *domain.LocationUnavailableError
			switch {
			case errors.As(err, &locationErr):
				response.Windows = append(response.Windows, Window{Range: w, Staff: []*domain.Staff{}, Reason: locationErr.Reason})
			case err != nil:
				return err
			default:
				response.Windows = append(response.Windows, Window{Range: w, Staff: staff})
			}
		}
		return nil
	})
	if err != nil {
		uc.logger.Error("CheckAvailability: failed to check windows: %v", err)
		return nil, err
	}

	uc.logger.Info("CheckAvailability: checked %d windows for package=%d", len(response.Windows), pkg.ID)
	return response, nil
}

// windows одно окно по Start или сетка окон на день по рабочим часам локации
func (uc *UseCase) windows(req *Request, inputs *planner.Inputs, pkg *domain.Package, items []domain.LineItem, now time.Time) ([]domain.TimeRange, error) {
	if req.Start != nil {
		var end *time.Time
		if req.End != nil {
			e := req.End.In(uc.location)
			end = &e
		}
		w, err := scheduling.EffectiveWindow(req.Start.In(uc.location), end, pkg, items)
		if err != nil {
			return nil, err
		}
		return []domain.TimeRange{w}, nil
	}

	y, m, d := req.Date.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, uc.location)

	session, err := scheduling.EffectiveWindow(date, nil, pkg, items)
	if err != nil {
		return nil, err
	}

	return scheduling.DaySlots(inputs.Location.Availability, date, session.Duration(), now), nil
}
