package update_add_ons

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	reservationRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-StudioBooking/internal/scheduling"
	"github.com/m04kA/SMC-StudioBooking/internal/service/planner"
)

// UseCase use case для замены дополнений бронирования с пересчетом суммы и окна
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
) *UseCase {
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
	}
}

// Execute выполняет use case замены дополнений.
// Набор заменяется целиком: при ошибке в любом элементе бронирование не меняется.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("UpdateAddOns: reservation=%d, add-ons=%d, actor=%d", req.ReservationID, len(req.AddOns), req.ActorID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("UpdateAddOns: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем бронирование
	current, err := uc.load(ctx, req.ReservationID)
	if err != nil {
		return nil, err
	}
	if err := current.EnsureOpen(); err != nil {
		uc.logger.Warn("UpdateAddOns: %v", err)
		return nil, err
	}

	// 4. Новые строки со снимком текущих цен
	items := []domain.LineItem{}
	if len(req.AddOns) > 0 {
		catalog, err := uc.catalogRepo.GetAddOns(ctx, scheduling.SelectionIDs(req.AddOns))
		if err != nil {
			uc.logger.Error("UpdateAddOns: failed to get add-ons: %v", err)
			return nil, fmt.Errorf("%w: failed to get add-ons: %w", ErrInternal, err)
		}
		items, err = scheduling.AttachLineItems(req.AddOns, catalog)
		if err != nil {
			uc.logger.Warn("UpdateAddOns: add-ons rejected: %v", err)
			return nil, err
		}
	}

	// 5. Пересчитываем окно и сумму; цена пакета остается из исходного снимка
	window, err := scheduling.ReplaceExtras(current.TimeRange, current.LineItems, items)
	if err != nil {
		uc.logger.Warn("UpdateAddOns: invalid window: %v", err)
		return nil, err
	}
	base := current.TotalAmount.Sub(domain.ItemsTotal(current.LineItems))
	total := base.Add(domain.ItemsTotal(items))
	if err := scheduling.CheckTotal(req.TotalAmount, total); err != nil {
		uc.logger.Warn("UpdateAddOns: total %s does not match computed %s", req.TotalAmount.StringFixed(2), total.StringFixed(2))
		return nil, err
	}

	inputs, err := uc.planner.Prepare(ctx, planner.Request{
		Window:               window,
		LocationID:           current.LocationID,
		StaffID:              current.StaffID,
		ExcludeReservationID: current.ID,
	})
	if err != nil {
		uc.logger.Warn("UpdateAddOns: failed to prepare planning for %s: %v", window, err)
		return nil, err
	}

	// 6. Повторная проверка окна и запись под блокировкой
	var (
		result  *domain.Reservation
		entries []domain.TimelineEntry
	)
	err = uc.locker.WithLock(ctx, inputs.LockKeys(), func(lockCtx context.Context) error {
		return uc.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			fresh, err := uc.load(txCtx, current.ID)
			if err != nil {
				return err
			}
			if !fresh.UpdatedAt.Equal(current.UpdatedAt) {
				uc.logger.Warn("UpdateAddOns: reservation id=%d was modified concurrently", current.ID)
				return domain.ErrConcurrentModification
			}

			staff, err := uc.planner.Decide(txCtx, inputs)
			if err != nil {
				return err
			}

			entries = []domain.TimelineEntry{domain.NewTimelineEntry(domain.AddOnsUpdatedMetadata{
				Before:      fresh.LineItems,
				After:       items,
				TotalBefore: fresh.TotalAmount,
				TotalAfter:  total,
				EndBefore:   fresh.TimeRange.End(),
				EndAfter:    window.End(),
				ActorID:     req.ActorID,
			}, now)}

			patch := domain.ReservationPatch{
				ExpectedStatus: fresh.Status,
				Window:         &window,
				LineItems:      &items,
				TotalAmount:    &total,
				UpdatedAt:      now,
			}
			if !fresh.HasStaff(staff.ID) {
				staffID := staff.ID
				patch.StaffID = &staffID
				entries = append(entries, domain.NewTimelineEntry(domain.StaffAssignedMetadata{
					FromStaffID: fresh.StaffID,
					ToStaffID:   staff.ID,
					ActorID:     req.ActorID,
				}, now))
			}
			patch.Timeline = entries

			if err := uc.reservationRepo.Apply(txCtx, fresh.ID, patch); err != nil {
				switch {
				case errors.Is(err, reservationRepo.ErrStatusMismatch):
					return domain.ErrConcurrentModification
				case errors.Is(err, reservationRepo.ErrStaffOverlap):
					return &domain.StaffUnavailableError{
						StaffID:   staff.ID,
						StaffName: staff.Name,
						Window:    window,
						Reason:    domain.ReasonBusy,
					}
				}
				uc.logger.Error("UpdateAddOns: failed to apply patch to reservation id=%d: %v", fresh.ID, err)
				return fmt.Errorf("%w: failed to apply patch: %w", ErrInternal, err)
			}
			entries = patch.Timeline

			result, err = uc.load(txCtx, fresh.ID)
			return err
		})
	})
	if err != nil {
		if domain.IsSchedulingConflict(err) {
			uc.metrics.ObserveConflict("add_ons_" + conflictKind(err))
			uc.logger.Warn("UpdateAddOns: extended window %s conflicts: %v", window, err)
		}
		return nil, err
	}

	uc.logger.Info("UpdateAddOns: successfully updated reservation id=%d, total=%s, end=%s",
		result.ID, result.TotalAmount.StringFixed(2), result.TimeRange.End())

	if err := uc.events.Publish(ctx, result, entries); err != nil {
		uc.metrics.ObservePublishFailure()
		uc.logger.Error("UpdateAddOns: failed to publish events of reservation id=%d: %v", result.ID, err)
	}

	return &Response{Reservation: result}, nil
}

func (uc *UseCase) load(ctx context.Context, id int64) (*domain.Reservation, error) {
	res, err := uc.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			uc.logger.Warn("UpdateAddOns: reservation id=%d not found", id)
			return nil, &domain.EntityNotFoundError{Entity: domain.EntityReservation, ID: id}
		}
		uc.logger.Error("UpdateAddOns: failed to get reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get reservation: %w", ErrInternal, err)
	}
	return res, nil
}

// conflictKind метка причины конфликта для метрик
func conflictKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrStaffUnavailable):
		return "staff"
	case errors.Is(err, domain.ErrLocationUnavailable):
		return "location"
	default:
		return "no_available_staff"
	}
}
