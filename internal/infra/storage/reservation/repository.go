package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/scheduling"
	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/psqlbuilder"
)

const (
	pqUniqueViolation    = "23505"
	pqExclusionViolation = "23P01"

	bookingCodeConstraint = "reservations_booking_code_key"
)

var reservationColumns = []string{
	"id",
	"booking_code",
	"status",
	"payment_status",
	"start_at",
	"end_at",
	"location_id",
	"staff_id",
	"package_id",
	"customer_name",
	"customer_email",
	"customer_phone",
	"notes",
	"total_amount",
	"created_at",
	"updated_at",
}

// Repository репозиторий бронирований
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Insert сохраняет бронирование вместе с позициями и записями таймлайна.
// Должен вызываться внутри транзакции, иначе запись не атомарна.
func (r *Repository) Insert(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("reservations").
		Columns(
			"booking_code",
			"status",
			"payment_status",
			"start_at",
			"end_at",
			"location_id",
			"staff_id",
			"package_id",
			"customer_name",
			"customer_email",
			"customer_phone",
			"notes",
			"total_amount",
			"created_at",
			"updated_at",
		).
		Values(
			res.BookingCode,
			res.Status,
			res.PaymentStatus,
			res.TimeRange.Start(),
			res.TimeRange.End(),
			res.LocationID,
			res.StaffID,
			res.PackageID,
			res.Customer.Name,
			res.Customer.Email,
			res.Customer.Phone,
			res.Notes,
			res.TotalAmount,
			res.CreatedAt,
			res.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Insert - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&res.ID); err != nil {
		return nil, mapWriteError("Insert - execute insert", err)
	}

	if err := insertLineItems(ctx, executor, res.ID, res.LineItems); err != nil {
		return nil, err
	}

	if err := insertTimeline(ctx, executor, res.ID, res.Timeline); err != nil {
		return nil, err
	}

	return res, nil
}

// GetByID получает бронирование по ID с позициями и таймлайном.
// Внутри транзакции строка блокируется (FOR UPDATE).
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

// GetByCode получает бронирование по booking code
func (r *Repository) GetByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	return r.getOne(ctx, "GetByCode", squirrel.Eq{"booking_code": code})
}

func (r *Repository) getOne(ctx context.Context, method string, where squirrel.Sqlizer) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(where)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan reservation: %v", ErrScanRow, method, err)
	}

	if res.LineItems, err = loadLineItems(ctx, executor, res.ID); err != nil {
		return nil, err
	}
	if res.Timeline, err = loadTimeline(ctx, executor, res.ID); err != nil {
		return nil, err
	}

	return res, nil
}

// FindActive возвращает бронирования по фильтру без позиций и таймлайна.
// Пустой filter.Statuses означает блокирующие статусы.
// Внутри транзакции найденные строки блокируются (FOR UPDATE).
func (r *Repository) FindActive(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := findActiveQuery(filter, dbmetrics.IsInTransaction(ctx))

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindActive - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindActive - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: FindActive - scan reservation: %v", ErrScanRow, err)
		}
		result = append(result, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FindActive - iterate rows: %w", ErrExecQuery, err)
	}

	return result, nil
}

// CountForCapacity считает неотмененные бронирования локации, начинающиеся в пределах day
func (r *Repository) CountForCapacity(ctx context.Context, locationID int64, day domain.TimeRange, excludeID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := capacityQuery(locationID, day, excludeID).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountForCapacity - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountForCapacity - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

// MaxBookingSequence возвращает максимальный номер последовательности за год (0, если кодов нет)
func (r *Repository) MaxBookingSequence(ctx context.Context, year int) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := maxSequenceQuery(year).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: MaxBookingSequence - build select query: %v", ErrBuildQuery, err)
	}

	var maxSeq int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&maxSeq); err != nil {
		return 0, fmt.Errorf("%w: MaxBookingSequence - scan max: %w", ErrScanRow, err)
	}

	return maxSeq, nil
}

// Apply применяет patch, если статус в БД совпадает с ожидаемым, и дописывает таймлайн.
// Если статус уже другой, возвращает ErrStatusMismatch.
func (r *Repository) Apply(ctx context.Context, id int64, patch domain.ReservationPatch) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := applyQuery(id, patch).ToSql()
	if err != nil {
		return fmt.Errorf("%w: Apply - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("Apply - execute update", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Apply - rows affected: %v", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrStatusMismatch
	}

	if patch.LineItems != nil {
		if err := replaceLineItems(ctx, executor, id, *patch.LineItems); err != nil {
			return err
		}
	}

	return insertTimeline(ctx, executor, id, patch.Timeline)
}

// findActiveQuery выборка бронирований по фильтру; пустой Statuses означает блокирующие статусы
func findActiveQuery(filter domain.ReservationFilter, forUpdate bool) squirrel.SelectBuilder {
	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = domain.BlockingStatuses
	}

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"status": statusStrings(statuses)}).
		OrderBy("start_at ASC", "id ASC")

	if len(filter.StaffIDs) > 0 {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"staff_id": filter.StaffIDs})
	}
	if filter.LocationID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"location_id": *filter.LocationID})
	}
	if filter.Window != nil {
		// Полуоткрытые интервалы: касание границ не пересечение
		selectBuilder = selectBuilder.
			Where(squirrel.Lt{"start_at": filter.Window.End()}).
			Where(squirrel.Gt{"end_at": filter.Window.Start()})
	}
	if filter.ExcludeReservationID > 0 {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": filter.ExcludeReservationID})
	}

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	return selectBuilder
}

func capacityQuery(locationID int64, day domain.TimeRange, excludeID int64) squirrel.SelectBuilder {
	selectBuilder := psqlbuilder.Select("COUNT(*)").
		From("reservations").
		Where(squirrel.Eq{"location_id": locationID}).
		Where(squirrel.NotEq{"status": statusStrings(domain.CapacityExcludedStatuses)}).
		Where(squirrel.GtOrEq{"start_at": day.Start()}).
		Where(squirrel.Lt{"start_at": day.End()})

	if excludeID > 0 {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": excludeID})
	}

	return selectBuilder
}

func maxSequenceQuery(year int) squirrel.SelectBuilder {
	prefix := scheduling.BookingCodePrefix(year)

	return psqlbuilder.Select().
		Column(squirrel.Expr("COALESCE(MAX(CAST(SUBSTRING(booking_code FROM ?) AS INTEGER)), 0)", len(prefix)+1)).
		From("reservations").
		Where(squirrel.Like{"booking_code": prefix + "%"})
}

// applyQuery UPDATE с проверкой ожидаемого статуса в WHERE
func applyQuery(id int64, patch domain.ReservationPatch) squirrel.UpdateBuilder {
	updateBuilder := psqlbuilder.Update("reservations").
		Set("updated_at", patch.UpdatedAt).
		Where(squirrel.Eq{"id": id, "status": patch.ExpectedStatus})

	if patch.ExpectedPayment != nil {
		updateBuilder = updateBuilder.Where(squirrel.Eq{"payment_status": *patch.ExpectedPayment})
	}
	if patch.Status != nil {
		updateBuilder = updateBuilder.Set("status", *patch.Status)
	}
	if patch.PaymentStatus != nil {
		updateBuilder = updateBuilder.Set("payment_status", *patch.PaymentStatus)
	}
	if patch.Window != nil {
		updateBuilder = updateBuilder.
			Set("start_at", patch.Window.Start()).
			Set("end_at", patch.Window.End())
	}
	if patch.StaffID != nil {
		updateBuilder = updateBuilder.Set("staff_id", *patch.StaffID)
	}
	if patch.TotalAmount != nil {
		updateBuilder = updateBuilder.Set("total_amount", *patch.TotalAmount)
	}

	return updateBuilder
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var (
		res                 domain.Reservation
		startAt, endAt      time.Time
		locationID, staffID sql.NullInt64
		notes               sql.NullString
	)

	err := row.Scan(
		&res.ID,
		&res.BookingCode,
		&res.Status,
		&res.PaymentStatus,
		&startAt,
		&endAt,
		&locationID,
		&staffID,
		&res.PackageID,
		&res.Customer.Name,
		&res.Customer.Email,
		&res.Customer.Phone,
		&notes,
		&res.TotalAmount,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.TimeRange, err = domain.NewTimeRange(startAt, endAt)
	if err != nil {
		return nil, err
	}
	if locationID.Valid {
		res.LocationID = &locationID.Int64
	}
	if staffID.Valid {
		res.StaffID = &staffID.Int64
	}
	if notes.Valid {
		res.Notes = &notes.String
	}

	return &res, nil
}

// mapWriteError переводит нарушения ограничений PostgreSQL в ошибки репозитория.
// Исходная pq ошибка остается в цепочке, чтобы txmanager видел serialization_failure.
func mapWriteError(step string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == pqUniqueViolation && pqErr.Constraint == bookingCodeConstraint:
			return fmt.Errorf("%w: %s: %v", ErrBookingCodeTaken, step, err)
		case pqErr.Code == pqExclusionViolation:
			return fmt.Errorf("%w: %s: %v", ErrStaffOverlap, step, err)
		}
	}
	return fmt.Errorf("%w: %s: %w", ErrExecQuery, step, err)
}

func statusStrings(statuses []domain.ReservationStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
