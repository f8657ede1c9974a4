package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/locks"
	catalogRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-StudioBooking/internal/scheduling"
)

// Request окно и ограничения, для которых нужно подобрать сотрудника
type Request struct {
	Window     domain.TimeRange
	LocationID *int64
	StaffID    *int64

	// ExcludeReservationID исключает само бронирование при переносе
	ExcludeReservationID int64
}

// Inputs каталожные данные, загруженные до взятия блокировок
type Inputs struct {
	Request   Request
	Location  *domain.Location
	Requested *domain.Staff
	Pool      []*domain.Staff
}

// LockKeys ключи блокировки: день локации и каждый сотрудник-кандидат
func (in *Inputs) LockKeys() []string {
	keys := make([]string, 0, len(in.Pool)+2)
	if in.Location != nil {
		keys = append(keys, locks.LocationDayKey(in.Location.ID, in.Request.Window.Date()))
	}
	if in.Requested != nil {
		keys = append(keys, locks.StaffKey(in.Requested.ID))
	}
	for _, s := range in.Pool {
		keys = append(keys, locks.StaffKey(s.ID))
	}
	if len(keys) == 0 {
		// кандидатов нет: блокируем день без локации, чтобы решение все равно принималось под ключом
		keys = append(keys, locks.LocationDayKey(0, in.Request.Window.Date()))
	}
	return keys
}

func (in *Inputs) staffIDs() []int64 {
	if in.Requested != nil {
		return []int64{in.Requested.ID}
	}
	ids := make([]int64, 0, len(in.Pool))
	for _, s := range in.Pool {
		ids = append(ids, s.ID)
	}
	return ids
}

// Planner загружает данные из хранилищ и вызывает чистые функции пакета scheduling
type Planner struct {
	catalog      CatalogRepository
	reservations ReservationRepository
	logger       Logger
}

// NewPlanner создает планировщик
func NewPlanner(catalog CatalogRepository, reservations ReservationRepository, logger Logger) *Planner {
	return &Planner{
		catalog:      catalog,
		reservations: reservations,
		logger:       logger,
	}
}

// Prepare загружает локацию, запрошенного сотрудника или список кандидатов.
// Каталог не меняется планировщиком, поэтому читается без блокировок.
func (p *Planner) Prepare(ctx context.Context, req Request) (*Inputs, error) {
	in := &Inputs{Request: req}

	if req.LocationID != nil {
		loc, err := p.catalog.GetLocation(ctx, *req.LocationID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrLocationNotFound) {
				return nil, &domain.EntityNotFoundError{Entity: domain.EntityLocation, ID: *req.LocationID}
			}
			p.logger.Error("Planner: failed to get location id=%d: %v", *req.LocationID, err)
			return nil, fmt.Errorf("%w: Prepare - get location: %w", ErrInternal, err)
		}
		if !loc.IsActive {
			return nil, &domain.InactiveEntityError{Entity: domain.EntityLocation, ID: loc.ID}
		}
		in.Location = loc
	}

	if req.StaffID != nil {
		s, err := p.catalog.GetStaff(ctx, *req.StaffID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrStaffNotFound) {
				return nil, &domain.EntityNotFoundError{Entity: domain.EntityStaff, ID: *req.StaffID}
			}
			p.logger.Error("Planner: failed to get staff id=%d: %v", *req.StaffID, err)
			return nil, fmt.Errorf("%w: Prepare - get staff: %w", ErrInternal, err)
		}
		in.Requested = s
		return in, nil
	}

	pool, err := p.catalog.ListActiveStaff(ctx, req.LocationID)
	if err != nil {
		p.logger.Error("Planner: failed to list staff: %v", err)
		return nil, fmt.Errorf("%w: Prepare - list staff: %w", ErrInternal, err)
	}
	in.Pool = scheduling.Candidates(pool, req.LocationID)

	return in, nil
}

// Decide проверяет правила локации и выбирает сотрудника.
// Вызывается под блокировкой и в транзакции, чтобы снимок бронирований не устарел до записи.
func (p *Planner) Decide(ctx context.Context, in *Inputs) (*domain.Staff, error) {
	window := in.Request.Window

	if in.Location != nil {
		count, err := p.reservations.CountForCapacity(ctx, in.Location.ID, domain.DayOf(window.Start()), in.Request.ExcludeReservationID)
		if err != nil {
			p.logger.Error("Planner: failed to count reservations of location id=%d: %v", in.Location.ID, err)
			return nil, fmt.Errorf("%w: Decide - count for capacity: %w", ErrInternal, err)
		}
		if err := scheduling.CheckLocation(in.Location, window, count); err != nil {
			return nil, err
		}
	}

	existing, err := p.loadBlocking(ctx, in)
	if err != nil {
		return nil, err
	}

	return scheduling.ResolveStaff(scheduling.StaffQuery{
		Window:       window,
		LocationID:   in.Request.LocationID,
		Requested:    in.Requested,
		Pool:         in.Pool,
		Reservations: existing,
	})
}

// Available возвращает всех сотрудников, которые могут взять окно. Ничего не блокирует.
func (p *Planner) Available(ctx context.Context, in *Inputs) ([]*domain.Staff, error) {
	if in.Location != nil {
		count, err := p.reservations.CountForCapacity(ctx, in.Location.ID, domain.DayOf(in.Request.Window.Start()), in.Request.ExcludeReservationID)
		if err != nil {
			p.logger.Error("Planner: failed to count reservations of location id=%d: %v", in.Location.ID, err)
			return nil, fmt.Errorf("%w: Available - count for capacity: %w", ErrInternal, err)
		}
		if err := scheduling.CheckLocation(in.Location, in.Request.Window, count); err != nil {
			return nil, err
		}
	}

	existing, err := p.loadBlocking(ctx, in)
	if err != nil {
		return nil, err
	}

	pool := in.Pool
	if in.Requested != nil {
		pool = []*domain.Staff{in.Requested}
	}

	return scheduling.AvailableStaff(scheduling.StaffQuery{
		Window:       in.Request.Window,
		LocationID:   in.Request.LocationID,
		Pool:         pool,
		Reservations: existing,
	}), nil
}

func (p *Planner) loadBlocking(ctx context.Context, in *Inputs) ([]*domain.Reservation, error) {
	ids := in.staffIDs()
	if len(ids) == 0 {
		return nil, nil
	}

	window := in.Request.Window
	existing, err := p.reservations.FindActive(ctx, domain.ReservationFilter{
		StaffIDs:             ids,
		Window:               &window,
		ExcludeReservationID: in.Request.ExcludeReservationID,
	})
	if err != nil {
		p.logger.Error("Planner: failed to load reservations for staff %v: %v", ids, err)
		return nil, fmt.Errorf("%w: loadBlocking - find active: %w", ErrInternal, err)
	}

	return existing, nil
}
