// Package memory хранит бронирования и каталог в памяти процесса.
// Используется в тестах usecase-слоя вместо PostgreSQL.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	catalogRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/catalog"
	reservationRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-StudioBooking/internal/scheduling"
)

// Store in-memory реализация репозиториев бронирований и каталога.
// Как и схема PostgreSQL, запрещает дубли booking code и пересечения блокирующих бронирований сотрудника.
type Store struct {
	mu sync.RWMutex

	reservations map[int64]*domain.Reservation
	nextID       int64
	nextEntryID  int64

	packages  map[int64]*domain.Package
	locations map[int64]*domain.Location
	staff     map[int64]*domain.Staff
	addOns    map[int64]*domain.AddOn
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		reservations: make(map[int64]*domain.Reservation),
		packages:     make(map[int64]*domain.Package),
		locations:    make(map[int64]*domain.Location),
		staff:        make(map[int64]*domain.Staff),
		addOns:       make(map[int64]*domain.AddOn),
	}
}

// PutPackage добавляет или заменяет пакет
func (s *Store) PutPackage(p domain.Package) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages[p.ID] = &p
}

// PutLocation добавляет или заменяет локацию
func (s *Store) PutLocation(l domain.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[l.ID] = &l
}

// PutStaff добавляет или заменяет сотрудника
func (s *Store) PutStaff(st domain.Staff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff[st.ID] = &st
}

// PutAddOn добавляет или заменяет дополнение
func (s *Store) PutAddOn(a domain.AddOn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addOns[a.ID] = &a
}

// GetPackage получает пакет по ID
func (s *Store) GetPackage(_ context.Context, id int64) (*domain.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.packages[id]
	if !ok {
		return nil, catalogRepo.ErrPackageNotFound
	}
	cp := *p
	return &cp, nil
}

// GetLocation получает локацию по ID
func (s *Store) GetLocation(_ context.Context, id int64) (*domain.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.locations[id]
	if !ok {
		return nil, catalogRepo.ErrLocationNotFound
	}
	cp := *l
	return &cp, nil
}

// GetStaff получает сотрудника по ID
func (s *Store) GetStaff(_ context.Context, id int64) (*domain.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.staff[id]
	if !ok {
		return nil, catalogRepo.ErrStaffNotFound
	}
	cp := *st
	return &cp, nil
}

// ListActiveStaff возвращает активных сотрудников локации по возрастанию ID
func (s *Store) ListActiveStaff(_ context.Context, locationID *int64) ([]*domain.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Staff, 0, len(s.staff))
	for _, st := range s.staff {
		if !st.IsActive {
			continue
		}
		if locationID != nil && !st.WorksAt(*locationID) {
			continue
		}
		cp := *st
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GetAddOns возвращает дополнения по ID; неизвестные пропускаются
func (s *Store) GetAddOns(_ context.Context, ids []int64) (map[int64]*domain.AddOn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int64]*domain.AddOn, len(ids))
	for _, id := range ids {
		if a, ok := s.addOns[id]; ok {
			cp := *a
			result[id] = &cp
		}
	}
	return result, nil
}

// Insert сохраняет бронирование
func (s *Store) Insert(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.reservations {
		if existing.BookingCode == res.BookingCode {
			return nil, reservationRepo.ErrBookingCodeTaken
		}
	}
	if s.overlapsLocked(res.ID, res.Status, res.StaffID, res.TimeRange) {
		return nil, reservationRepo.ErrStaffOverlap
	}

	s.nextID++
	res.ID = s.nextID
	for i := range res.Timeline {
		s.nextEntryID++
		res.Timeline[i].ID = s.nextEntryID
	}

	s.reservations[res.ID] = clone(res)
	return res, nil
}

// GetByID получает бронирование по ID
func (s *Store) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.reservations[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	return clone(res), nil
}

// GetByCode получает бронирование по booking code
func (s *Store) GetByCode(_ context.Context, code string) (*domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, res := range s.reservations {
		if res.BookingCode == code {
			return clone(res), nil
		}
	}
	return nil, reservationRepo.ErrReservationNotFound
}

// FindActive возвращает бронирования по фильтру; пустой Statuses означает блокирующие статусы
func (s *Store) FindActive(_ context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = domain.BlockingStatuses
	}

	result := make([]*domain.Reservation, 0)
	for _, res := range s.reservations {
		if !containsStatus(statuses, res.Status) {
			continue
		}
		if len(filter.StaffIDs) > 0 && (res.StaffID == nil || !containsID(filter.StaffIDs, *res.StaffID)) {
			continue
		}
		if filter.LocationID != nil && !res.AtLocation(*filter.LocationID) {
			continue
		}
		if filter.Window != nil && !domain.Overlaps(res.TimeRange, *filter.Window) {
			continue
		}
		if filter.ExcludeReservationID > 0 && res.ID == filter.ExcludeReservationID {
			continue
		}
		result = append(result, clone(res))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TimeRange.Start().Equal(result[j].TimeRange.Start()) {
			return result[i].ID < result[j].ID
		}
		return result[i].TimeRange.Start().Before(result[j].TimeRange.Start())
	})
	return result, nil
}

// CountForCapacity считает неотмененные бронирования локации, начинающиеся в пределах day
func (s *Store) CountForCapacity(_ context.Context, locationID int64, day domain.TimeRange, excludeID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, res := range s.reservations {
		if res.ID == excludeID || !res.AtLocation(locationID) || !res.CountsTowardsCapacity() {
			continue
		}
		start := res.TimeRange.Start()
		if !start.Before(day.Start()) && start.Before(day.End()) {
			count++
		}
	}
	return count, nil
}

// MaxBookingSequence возвращает максимальный номер последовательности за год
func (s *Store) MaxBookingSequence(_ context.Context, year int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := scheduling.BookingCodePrefix(year)
	codes := make([]string, 0, len(s.reservations))
	for _, res := range s.reservations {
		if strings.HasPrefix(res.BookingCode, prefix) {
			codes = append(codes, res.BookingCode)
		}
	}
	return scheduling.MaxSequence(codes, year), nil
}

// Apply применяет patch при совпадении ожидаемого статуса
func (s *Store) Apply(_ context.Context, id int64, patch domain.ReservationPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.reservations[id]
	if !ok || res.Status != patch.ExpectedStatus {
		return reservationRepo.ErrStatusMismatch
	}
	if patch.ExpectedPayment != nil && res.PaymentStatus != *patch.ExpectedPayment {
		return reservationRepo.ErrStatusMismatch
	}

	updated := clone(res)
	if patch.Status != nil {
		updated.Status = *patch.Status
	}
	if patch.PaymentStatus != nil {
		updated.PaymentStatus = *patch.PaymentStatus
	}
	if patch.Window != nil {
		updated.TimeRange = *patch.Window
	}
	if patch.StaffID != nil {
		staffID := *patch.StaffID
		updated.StaffID = &staffID
	}
	if patch.LineItems != nil {
		updated.LineItems = append([]domain.LineItem(nil), (*patch.LineItems)...)
	}
	if patch.TotalAmount != nil {
		updated.TotalAmount = *patch.TotalAmount
	}

	if s.overlapsLocked(updated.ID, updated.Status, updated.StaffID, updated.TimeRange) {
		return reservationRepo.ErrStaffOverlap
	}

	for i := range patch.Timeline {
		s.nextEntryID++
		patch.Timeline[i].ID = s.nextEntryID
		updated.Timeline = append(updated.Timeline, patch.Timeline[i])
	}
	updated.UpdatedAt = patch.UpdatedAt

	s.reservations[id] = updated
	return nil
}

// overlapsLocked повторяет exclusion-ограничение схемы PostgreSQL
func (s *Store) overlapsLocked(selfID int64, status domain.ReservationStatus, staffID *int64, window domain.TimeRange) bool {
	if staffID == nil || !status.IsBlocking() {
		return false
	}
	for _, other := range s.reservations {
		if other.ID == selfID || !other.IsBlocking() || !other.HasStaff(*staffID) {
			continue
		}
		if domain.Overlaps(other.TimeRange, window) {
			return true
		}
	}
	return false
}

func clone(res *domain.Reservation) *domain.Reservation {
	cp := *res
	if res.LocationID != nil {
		v := *res.LocationID
		cp.LocationID = &v
	}
	if res.StaffID != nil {
		v := *res.StaffID
		cp.StaffID = &v
	}
	if res.Notes != nil {
		v := *res.Notes
		cp.Notes = &v
	}
	cp.LineItems = append([]domain.LineItem(nil), res.LineItems...)
	cp.Timeline = append([]domain.TimelineEntry(nil), res.Timeline...)
	return &cp
}

func containsStatus(list []domain.ReservationStatus, s domain.ReservationStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsID(list []int64, id int64) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
