package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	reservationRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-StudioBooking/internal/service/reservations/models"
	"github.com/m04kA/SMC-StudioBooking/pkg/ptr"
)

// Service сервис чтения бронирований и переходов по жизненному циклу
type Service struct {
	reservationRepo ReservationRepository
	txManager       TransactionManager
	events          EventPublisher
	metrics         MetricsRecorder
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	reservationRepo ReservationRepository,
	txManager TransactionManager,
	events EventPublisher,
	metrics MetricsRecorder,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		txManager:       txManager,
		events:          events,
		metrics:         metrics,
		timeProvider:    realTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает бронирование по ID вместе с таймлайном
func (s *Service) GetByID(ctx context.Context, id int64) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d", id)

	res, err := s.load(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	return models.FromDomainReservation(res), nil
}

// GetByCode получает бронирование по booking code
func (s *Service) GetByCode(ctx context.Context, code string) (*models.ReservationResponse, error) {
	s.logger.Info("GetByCode: fetching reservation code=%s", code)

	res, err := s.reservationRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("GetByCode: reservation code=%s not found", code)
			return nil, &domain.EntityNotFoundError{Entity: domain.EntityReservation, Key: code}
		}
		s.logger.Error("GetByCode: repository error for code=%s: %v", code, err)
		return nil, fmt.Errorf("%w: GetByCode - repository error: %w", ErrInternal, err)
	}

	return models.FromDomainReservation(res), nil
}

// ChangeStatus переводит бронирование по обычному графу статусов.
// Запись применяется, только если статус не изменился с момента чтения.
func (s *Service) ChangeStatus(ctx context.Context, id int64, req *models.ChangeStatusRequest) (*models.ReservationResponse, error) {
	s.logger.Info("ChangeStatus: reservation id=%d to status=%s by actor=%d", id, req.Status, req.ActorID)

	to, err := domain.ParseReservationStatus(strings.ToUpper(req.Status))
	if err != nil {
		s.logger.Warn("ChangeStatus: invalid status=%s for reservation id=%d", req.Status, id)
		return nil, err
	}

	res, err := s.apply(ctx, "ChangeStatus", id, func(current *domain.Reservation) (domain.ReservationPatch, error) {
		if err := domain.CheckStatusTransition(current.Status, to); err != nil {
			return domain.ReservationPatch{}, err
		}
		now := s.timeProvider.Now()
		return domain.ReservationPatch{
			ExpectedStatus: current.Status,
			Status:         &to,
			Timeline: []domain.TimelineEntry{
				domain.NewTimelineEntry(domain.StatusChangedMetadata{
					From:    current.Status,
					To:      to,
					ActorID: req.ActorID,
					Reason:  req.Reason,
				}, now),
			},
			UpdatedAt: now,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(domain.TransitionStatus), string(to))
	s.logger.Info("ChangeStatus: reservation id=%d is now %s", id, to)
	return models.FromDomainReservation(res), nil
}

// ChangePaymentStatus переводит статус оплаты; статус бронирования не меняется
func (s *Service) ChangePaymentStatus(ctx context.Context, id int64, req *models.ChangePaymentStatusRequest) (*models.ReservationResponse, error) {
	s.logger.Info("ChangePaymentStatus: reservation id=%d to payment status=%s by actor=%d", id, req.PaymentStatus, req.ActorID)

	to, err := domain.ParsePaymentStatus(strings.ToUpper(req.PaymentStatus))
	if err != nil {
		s.logger.Warn("ChangePaymentStatus: invalid payment status=%s for reservation id=%d", req.PaymentStatus, id)
		return nil, err
	}

	res, err := s.apply(ctx, "ChangePaymentStatus", id, func(current *domain.Reservation) (domain.ReservationPatch, error) {
		if err := domain.CheckPaymentTransition(current.PaymentStatus, to); err != nil {
			return domain.ReservationPatch{}, err
		}
		now := s.timeProvider.Now()
		return domain.ReservationPatch{
			ExpectedStatus:  current.Status,
			ExpectedPayment: ptr.Ptr(current.PaymentStatus),
			PaymentStatus:   &to,
			Timeline: []domain.TimelineEntry{
				domain.NewTimelineEntry(domain.PaymentStatusChangedMetadata{
					From:      current.PaymentStatus,
					To:        to,
					Reference: req.Reference,
					ActorID:   req.ActorID,
				}, now),
			},
			UpdatedAt: now,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(domain.TransitionPayment), string(to))
	s.logger.Info("ChangePaymentStatus: reservation id=%d payment is now %s", id, to)
	return models.FromDomainReservation(res), nil
}

// ForceStatus административная смена статуса в обход графа.
// Причина обязательна и сохраняется в записи ADMIN_OVERRIDE.
func (s *Service) ForceStatus(ctx context.Context, id int64, req *models.ForceStatusRequest) (*models.ReservationResponse, error) {
	s.logger.Info("ForceStatus: reservation id=%d to status=%s by admin=%d", id, req.Status, req.ActorID)

	to, err := domain.ParseReservationStatus(strings.ToUpper(req.Status))
	if err != nil {
		s.logger.Warn("ForceStatus: invalid status=%s for reservation id=%d", req.Status, id)
		return nil, err
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, &domain.ValidationError{Field: "reason", Reason: domain.ReasonRequired}
	}
	if len(reason) > domain.MaxOverrideReasonLength {
		return nil, &domain.ValidationError{Field: "reason", Reason: domain.ReasonTooLong}
	}

	res, err := s.apply(ctx, "ForceStatus", id, func(current *domain.Reservation) (domain.ReservationPatch, error) {
		if current.Status == to {
			return domain.ReservationPatch{}, &domain.InvalidStatusTransitionError{
				Kind: domain.TransitionStatus,
				From: string(current.Status),
				To:   string(to),
			}
		}
		now := s.timeProvider.Now()
		return domain.ReservationPatch{
			ExpectedStatus: current.Status,
			Status:         &to,
			Timeline: []domain.TimelineEntry{
				domain.NewTimelineEntry(domain.AdminOverrideMetadata{
					From:    current.Status,
					To:      to,
					Reason:  reason,
					ActorID: req.ActorID,
				}, now),
			},
			UpdatedAt: now,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition("override", string(to))
	s.logger.Warn("ForceStatus: reservation id=%d forced to %s by admin=%d: %s", id, to, req.ActorID, reason)
	return models.FromDomainReservation(res), nil
}

// Вспомогательные методы

type patchBuilder func(current *domain.Reservation) (domain.ReservationPatch, error)

// apply читает бронирование, строит patch и применяет его в одной транзакции, затем публикует события
func (s *Service) apply(ctx context.Context, op string, id int64, build patchBuilder) (*domain.Reservation, error) {
	var (
		result  *domain.Reservation
		entries []domain.TimelineEntry
	)

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		current, err := s.load(txCtx, op, id)
		if err != nil {
			return err
		}

		patch, err := build(current)
		if err != nil {
			s.logger.Warn("%s: reservation id=%d: %v", op, id, err)
			return err
		}

		if err := s.reservationRepo.Apply(txCtx, id, patch); err != nil {
			switch {
			case errors.Is(err, reservationRepo.ErrStatusMismatch):
				s.logger.Warn("%s: reservation id=%d was modified concurrently", op, id)
				return domain.ErrConcurrentModification
			case errors.Is(err, reservationRepo.ErrStaffOverlap):
				s.logger.Warn("%s: reservation id=%d would overlap another booking of its staff", op, id)
				return &domain.StaffUnavailableError{
					StaffID: ptr.Deref(current.StaffID, 0),
					Window:  current.TimeRange,
					Reason:  domain.ReasonBusy,
				}
			}
			s.logger.Error("%s: repository error for reservation id=%d: %v", op, id, err)
			return fmt.Errorf("%w: %s - apply: %w", ErrInternal, op, err)
		}
		entries = patch.Timeline

		result, err = s.load(txCtx, op, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.events.Publish(ctx, result, entries); err != nil {
		s.metrics.ObservePublishFailure()
		s.logger.Error("%s: failed to publish events of reservation id=%d: %v", op, id, err)
	}

	return result, nil
}

func (s *Service) load(ctx context.Context, op string, id int64) (*domain.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%d not found", op, id)
			return nil, &domain.EntityNotFoundError{Entity: domain.EntityReservation, ID: id}
		}
		s.logger.Error("%s: repository error for reservation id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return res, nil
}
