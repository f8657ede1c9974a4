package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	catalogRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/catalog"
	reservationRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-StudioBooking/internal/scheduling"
	"github.com/m04kA/SMC-StudioBooking/internal/service/planner"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
)

// UseCase use case для создания бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	catalogRepo     CatalogRepository
	planner         Planner
	locker          Locker
	txManager       TransactionManager
	events          EventPublisher
	metrics         MetricsRecorder
	timeProvider    TimeProvider
	logger          Logger

	location     *time.Location
	codeAttempts int
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	catalogRepo CatalogRepository,
	planner Planner,
	locker Locker,
	txManager TransactionManager,
	events EventPublisher,
	metrics MetricsRecorder,
	logger Logger,
	opts Options,
) *UseCase {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.CodeAttempts <= 0 {
		opts.CodeAttempts = domain.DefaultCodeAttempts
	}

	return &UseCase{
		reservationRepo: reservationRepo,
		catalogRepo:     catalogRepo,
		planner:         planner,
		locker:          locker,
		txManager:       txManager,
		events:          events,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
		location:        opts.Location,
		codeAttempts:    opts.CodeAttempts,
	}
}

// Execute выполняет use case создания бронирования.
// Проверка конфликтов и вставка выполняются под блокировкой ключей сотрудника и дня локации
// в сериализуемой транзакции; при коллизии booking code вся попытка повторяется.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: package=%d, start=%s, location=%d, staff=%d, add-ons=%d",
		req.PackageID, req.Start.Format(time.RFC3339), ptr.Deref(req.LocationID, 0), ptr.Deref(req.StaffID, 0), len(req.AddOns))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now().In(uc.location)
	if err := validateStart(req.Start, now); err != nil {
		uc.logger.Warn("CreateReservation: start %s is in the past", req.Start.Format(time.RFC3339))
		return nil, err
	}

	// 3. Получаем пакет
	pkg, err := uc.catalogRepo.GetPackage(ctx, req.PackageID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrPackageNotFound) {
			uc.logger.Warn("CreateReservation: package id=%d not found", req.PackageID)
			return nil, &domain.EntityNotFoundError{Entity: domain.EntityPackage, ID: req.PackageID}
		}
		uc.logger.Error("CreateReservation: failed to get package id=%d: %v", req.PackageID, err)
		return nil, fmt.Errorf("%w: failed to get package: %w", ErrInternal, err)
	}
	if !pkg.IsActive {
		uc.logger.Warn("CreateReservation: package id=%d is inactive", pkg.ID)
		return nil, &domain.InactiveEntityError{Entity: domain.EntityPackage, ID: pkg.ID}
	}

	// 4. Фиксируем цены дополнений
	items, err := uc.attachAddOns(ctx, req.AddOns)
	if err != nil {
		return nil, err
	}

	// 5. Считаем фактическое окно с учетом дополнений
	var end *time.Time
	if req.End != nil {
		e := req.End.In(uc.location)
		end = &e
	}
	window, err := scheduling.EffectiveWindow(req.Start.In(uc.location), end, pkg, items)
	if err != nil {
		uc.logger.Warn("CreateReservation: invalid window: %v", err)
		return nil, err
	}

	// 6. Сверяем сумму с клиентской
	total := scheduling.TotalAmount(pkg, items)
	if err := scheduling.CheckTotal(req.TotalAmount, total); err != nil {
		uc.logger.Warn("CreateReservation: total %s does not match computed %s", req.TotalAmount.StringFixed(2), total.StringFixed(2))
		return nil, err
	}

	// 7. Загружаем локацию и кандидатов (без блокировок)
	inputs, err := uc.planner.Prepare(ctx, planner.Request{
		Window:     window,
		LocationID: req.LocationID,
		StaffID:    req.StaffID,
	})
	if err != nil {
		uc.logger.Warn("CreateReservation: failed to prepare planning for %s: %v", window, err)
		return nil, err
	}

	// 8. Выбор сотрудника и вставка под блокировкой, с повтором при коллизии booking code
	var (
		result  *domain.Reservation
		attempt int
	)
	for attempt = 1; attempt <= uc.codeAttempts; attempt++ {
		result, err = uc.createOnce(ctx, inputs, req, pkg, items, total, now, attempt)
		if err == nil || !errors.Is(err, domain.ErrUniqueness) {
			break
		}
		uc.metrics.ObserveCodeRetry()
		uc.logger.Warn("CreateReservation: %v (attempt %d/%d)", err, attempt, uc.codeAttempts)
	}

	if err != nil {
		if domain.IsSchedulingConflict(err) {
			uc.metrics.ObserveConflict(conflictReason(err))
			uc.logger.Warn("CreateReservation: conflict for %s: %v", window, err)
		}
		return nil, err
	}

	uc.metrics.ObserveCreated()
	uc.logger.Info("CreateReservation: successfully created reservation id=%d, code=%s, staff=%d",
		result.ID, result.BookingCode, ptr.Deref(result.StaffID, 0))

	// 9. Публикуем событие; ошибка публикации не откатывает бронирование
	if err := uc.events.Publish(ctx, result, result.Timeline); err != nil {
		uc.metrics.ObservePublishFailure()
		uc.logger.Error("CreateReservation: failed to publish events of reservation id=%d: %v", result.ID, err)
	}

	return &Response{
		Reservation:  result,
		CodeAttempts: attempt,
	}, nil
}

// attachAddOns загружает выбранные дополнения и создает строки со снимком цен
func (uc *UseCase) attachAddOns(ctx context.Context, selections []scheduling.Selection) ([]domain.LineItem, error) {
	if len(selections) == 0 {
		return []domain.LineItem{}, nil
	}

	catalog, err := uc.catalogRepo.GetAddOns(ctx, scheduling.SelectionIDs(selections))
	if err != nil {
		uc.logger.Error("CreateReservation: failed to get add-ons: %v", err)
		return nil, fmt.Errorf("%w: failed to get add-ons: %w", ErrInternal, err)
	}

	items, err := scheduling.AttachLineItems(selections, catalog)
	if err != nil {
		uc.logger.Warn("CreateReservation: add-ons rejected: %v", err)
		return nil, err
	}

	return items, nil
}

// createOnce одна попытка: блокировка, транзакция, выбор сотрудника, генерация кода и вставка
func (uc *UseCase) createOnce(
	ctx context.Context,
	inputs *planner.Inputs,
	req *Request,
	pkg *domain.Package,
	items []domain.LineItem,
	total decimal.Decimal,
	now time.Time,
	attempt int,
) (*domain.Reservation, error) {
	var result *domain.Reservation

	err := uc.locker.WithLock(ctx, inputs.LockKeys(), func(lockCtx context.Context) error {
		return uc.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			// 8.1. Правила локации и выбор сотрудника по свежему снимку бронирований
			staff, err := uc.planner.Decide(txCtx, inputs)
			if err != nil {
				return err
			}

			// 8.2. Следующий booking code за год создания
			maxSeq, err := uc.reservationRepo.MaxBookingSequence(txCtx, now.Year())
			if err != nil {
				uc.logger.Error("CreateReservation: failed to get max booking sequence: %v", err)
				return fmt.Errorf("%w: failed to get max booking sequence: %w", ErrInternal, err)
			}
			code := scheduling.NextBookingCode(now.Year(), maxSeq)

			// 8.3. Собираем бронирование с первой записью таймлайна
			window := inputs.Request.Window
			staffID := staff.ID
			res := &domain.Reservation{
				BookingCode:   code,
				Status:        domain.StatusPending,
				PaymentStatus: domain.PaymentPending,
				TimeRange:     window,
				LocationID:    req.LocationID,
				StaffID:       &staffID,
				PackageID:     pkg.ID,
				Customer:      req.Customer,
				Notes:         req.Notes,
				TotalAmount:   total,
				LineItems:     items,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			res.Timeline = []domain.TimelineEntry{
				domain.NewTimelineEntry(domain.CreatedMetadata{
					BookingCode: code,
					PackageID:   pkg.ID,
					LocationID:  req.LocationID,
					StaffID:     &staffID,
					Start:       window.Start(),
					End:         window.End(),
					TotalAmount: total,
					LineItems:   items,
				}, now),
			}

			// 8.4. Сохраняем
			created, err := uc.reservationRepo.Insert(txCtx, res)
			if err != nil {
				switch {
				case errors.Is(err, reservationRepo.ErrBookingCodeTaken):
					return &domain.UniquenessError{BookingCode: code, Attempts: attempt}
				case errors.Is(err, reservationRepo.ErrStaffOverlap):
					return &domain.StaffUnavailableError{
						StaffID:   staff.ID,
						StaffName: staff.Name,
						Window:    window,
						Reason:    domain.ReasonBusy,
					}
				}
				uc.logger.Error("CreateReservation: failed to insert reservation %s: %v", code, err)
				return fmt.Errorf("%w: failed to insert reservation: %w", ErrInternal, err)
			}

			result = created
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
