package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/psqlbuilder"
)

var staffColumns = []string{
	"id",
	"name",
	"is_active",
	"primary_location_id",
	"location_ids",
	"working_hours",
	"blackout_dates::text[]",
}

// Repository репозиторий каталога (пакеты, дополнения, локации, сотрудники).
// Планировщик только читает каталог, поэтому записи здесь нет.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetPackage получает пакет по ID
func (r *Repository) GetPackage(ctx context.Context, id int64) (*domain.Package, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "duration_minutes", "price", "is_active").
		From("packages").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetPackage - build select query: %v", ErrBuildQuery, err)
	}

	var pkg domain.Package
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&pkg.ID,
		&pkg.Name,
		&pkg.DurationMinutes,
		&pkg.Price,
		&pkg.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPackageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetPackage - scan package: %v", ErrScanRow, err)
	}

	return &pkg, nil
}

// GetLocation получает локацию по ID
func (r *Repository) GetLocation(ctx context.Context, id int64) (*domain.Location, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"slug",
		"name",
		"is_active",
		"max_bookings_per_day",
		"working_hours",
		"blackout_dates::text[]",
	).
		From("locations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetLocation - build select query: %v", ErrBuildQuery, err)
	}

	var (
		loc          domain.Location
		maxPerDay    sql.NullInt64
		workingHours []byte
		blackouts    pq.StringArray
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&loc.ID,
		&loc.Slug,
		&loc.Name,
		&loc.IsActive,
		&maxPerDay,
		&workingHours,
		&blackouts,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetLocation - scan location: %v", ErrScanRow, err)
	}

	if maxPerDay.Valid {
		limit := int(maxPerDay.Int64)
		loc.MaxBookingsPerDay = &limit
	}

	loc.Availability, err = parseAvailability(workingHours, blackouts)
	if err != nil {
		return nil, fmt.Errorf("%w: GetLocation - parse availability of location id=%d: %v", ErrScanRow, id, err)
	}

	return &loc, nil
}

// GetStaff получает сотрудника по ID
func (r *Repository) GetStaff(ctx context.Context, id int64) (*domain.Staff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(staffColumns...).
		From("staff").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaff - build select query: %v", ErrBuildQuery, err)
	}

	s, err := scanStaff(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaff - scan staff: %v", ErrScanRow, err)
	}

	return s, nil
}

// ListActiveStaff возвращает активных сотрудников, работающих в локации (или всех, если locationID == nil).
// Результат отсортирован по ID по возрастанию.
func (r *Repository) ListActiveStaff(ctx context.Context, locationID *int64) ([]*domain.Staff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(staffColumns...).
		From("staff").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("id ASC")

	if locationID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Or{
			squirrel.Eq{"primary_location_id": *locationID},
			squirrel.Expr("? = ANY(location_ids)", *locationID),
		})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveStaff - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveStaff - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.Staff, 0)
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListActiveStaff - scan staff: %v", ErrScanRow, err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveStaff - iterate rows: %v", ErrExecQuery, err)
	}

	return result, nil
}

// GetAddOns возвращает дополнения по списку ID. Неизвестные ID в результат не попадают.
func (r *Repository) GetAddOns(ctx context.Context, ids []int64) (map[int64]*domain.AddOn, error) {
	result := make(map[int64]*domain.AddOn, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "price", "duration_minutes", "is_active").
		From("add_ons").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetAddOns - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetAddOns - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			addOn    domain.AddOn
			duration sql.NullInt64
		)
		if err := rows.Scan(&addOn.ID, &addOn.Name, &addOn.Price, &duration, &addOn.IsActive); err != nil {
			return nil, fmt.Errorf("%w: GetAddOns - scan add-on: %v", ErrScanRow, err)
		}
		if duration.Valid {
			minutes := int(duration.Int64)
			addOn.DurationMinutes = &minutes
		}
		result[addOn.ID] = &addOn
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetAddOns - iterate rows: %v", ErrExecQuery, err)
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStaff(row rowScanner) (*domain.Staff, error) {
	var (
		s            domain.Staff
		locationIDs  pq.Int64Array
		workingHours []byte
		blackouts    pq.StringArray
	)

	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.IsActive,
		&s.PrimaryLocationID,
		&locationIDs,
		&workingHours,
		&blackouts,
	)
	if err != nil {
		return nil, err
	}

	s.LocationIDs = []int64(locationIDs)
	s.Availability, err = parseAvailability(workingHours, blackouts)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// parseAvailability разбирает JSONB рабочих часов и массив дат блокировки
func parseAvailability(workingHours []byte, blackouts []string) (domain.Availability, error) {
	var a domain.Availability

	if len(workingHours) > 0 {
		if err := json.Unmarshal(workingHours, &a.WorkingHours); err != nil {
			return domain.Availability{}, fmt.Errorf("working hours: %w", err)
		}
	}

	for _, raw := range blackouts {
		date, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return domain.Availability{}, fmt.Errorf("blackout date %q: %w", raw, err)
		}
		a.BlackoutDates = append(a.BlackoutDates, date)
	}

	return a, nil
}
