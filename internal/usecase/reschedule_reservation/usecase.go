package reschedule_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	catalogRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/catalog"
	reservationRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-StudioBooking/internal/scheduling"
	"github.com/m04kA/SMC-StudioBooking/internal/service/planner"
)

// UseCase use case для переноса бронирования на другое время и, возможно, другого сотрудника
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
	location        *time.Location
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
	location *time.Location,
) *UseCase {
	if location == nil {
		location = time.UTC
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
		location:        location,
	}
}

// Execute выполняет use case переноса.
// Правила локации, конфликты (без учета самого бронирования) и выбор сотрудника проверяются заново под блокировкой.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleReservation: reservation=%d, start=%s, actor=%d",
		req.ReservationID, req.Start.Format(time.RFC3339), req.ActorID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now().In(uc.location)
	if err := validateStart(req.Start, now); err != nil {
		uc.logger.Warn("RescheduleReservation: start %s is in the past", req.Start.Format(time.RFC3339))
		return nil, err
	}

	// 3. Получаем бронирование
	current, err := uc.load(ctx, req.ReservationID)
	if err != nil {
		return nil, err
	}
	if err := current.EnsureOpen(); err != nil {
		uc.logger.Warn("RescheduleReservation: %v", err)
		return nil, err
	}

	// 4. Новое окно: базовая длительность пакета (или явный конец) плюс дополнения
	pkg, err := uc.catalogRepo.GetPackage(ctx, current.PackageID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrPackageNotFound) {
			uc.logger.Warn("RescheduleReservation: package id=%d not found", current.PackageID)
			return nil, &domain.EntityNotFoundError{Entity: domain.EntityPackage, ID: current.PackageID}
		}
		uc.logger.Error("RescheduleReservation: failed to get package id=%d: %v", current.PackageID, err)
		return nil, fmt.Errorf("%w: failed to get package: %w", ErrInternal, err)
	}

	var end *time.Time
	if req.End != nil {
		e := req.End.In(uc.location)
		end = &e
	}
	window, err := scheduling.EffectiveWindow(req.Start.In(uc.location), end, pkg, current.LineItems)
	if err != nil {
		uc.logger.Warn("RescheduleReservation: invalid window: %v", err)
		return nil, err
	}

	// 5. Без явного сотрудника остается текущий
	staffID := req.StaffID
	if staffID == nil {
		staffID = current.StaffID
	}

	inputs, err := uc.planner.Prepare(ctx, planner.Request{
		Window:               window,
		LocationID:           current.LocationID,
		StaffID:              staffID,
		ExcludeReservationID: current.ID,
	})
	if err != nil {
		uc.logger.Warn("RescheduleReservation: failed to prepare planning for %s: %v", window, err)
		return nil, err
	}

	// 6. Выбор сотрудника и запись под блокировкой
	var (
		result  *domain.Reservation
		entries []domain.TimelineEntry
	)
	err = uc.locker.WithLock(ctx, inputs.LockKeys(), func(lockCtx context.Context) error {
		return uc.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			// 6.1. Перечитываем бронирование и убеждаемся, что его не изменили параллельно
			fresh, err := uc.load(txCtx, current.ID)
			if err != nil {
				return err
			}
			if !fresh.UpdatedAt.Equal(current.UpdatedAt) {
				uc.logger.Warn("RescheduleReservation: reservation id=%d was modified concurrently", current.ID)
				return domain.ErrConcurrentModification
			}

			// 6.2. Правила локации и конфликты
			staff, err := uc.planner.Decide(txCtx, inputs)
			if err != nil {
				return err
			}

			// 6.3. Записи таймлайна
			entries = []domain.TimelineEntry{
				domain.NewTimelineEntry(domain.RescheduledMetadata{
					FromStart: fresh.TimeRange.Start(),
					FromEnd:   fresh.TimeRange.End(),
					ToStart:   window.Start(),
					ToEnd:     window.End(),
					ActorID:   req.ActorID,
				}, now),
			}

			patch := domain.ReservationPatch{
				ExpectedStatus: fresh.Status,
				Window:         &window,
				UpdatedAt:      now,
			}
			if !fresh.HasStaff(staff.ID) {
				newStaffID := staff.ID
				patch.StaffID = &newStaffID
				entries = append(entries, domain.NewTimelineEntry(domain.StaffAssignedMetadata{
					FromStaffID: fresh.StaffID,
					ToStaffID:   staff.ID,
					ActorID:     req.ActorID,
				}, now))
			}
			patch.Timeline = entries

			// 6.4. Сохраняем
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
				uc.logger.Error("RescheduleReservation: failed to apply patch to reservation id=%d: %v", fresh.ID, err)
				return fmt.Errorf("%w: failed to apply patch: %w", ErrInternal, err)
			}

			result, err = uc.load(txCtx, fresh.ID)
			return err
		})
	})
	if err != nil {
		if domain.IsSchedulingConflict(err) {
			uc.metrics.ObserveConflict(conflictReason(err))
			uc.logger.Warn("RescheduleReservation: conflict for %s: %v", window, err)
		}
		return nil, err
	}

	uc.logger.Info("RescheduleReservation: successfully rescheduled reservation id=%d to %s", result.ID, result.TimeRange)

	// 7. Публикуем события
	if err := uc.events.Publish(ctx, result, entries); err != nil {
		uc.metrics.ObservePublishFailure()
		uc.logger.Error("RescheduleReservation: failed to publish events of reservation id=%d: %v", result.ID, err)
	}

	return &Response{
		Reservation:  result,
		StaffChanged: len(entries) > 1,
	}, nil
}

func (uc *UseCase) load(ctx context.Context, id int64) (*domain.Reservation, error) {
	res, err := uc.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			uc.logger.Warn("RescheduleReservation: reservation id=%d not found", id)
			return nil, &domain.EntityNotFoundError{Entity: domain.EntityReservation, ID: id}
		}
		uc.logger.Error("RescheduleReservation: failed to get reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get reservation: %w", ErrInternal, err)
	}
	return res, nil
}
