package reservation

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservation.repository: reservation not found")

	// ErrBookingCodeTaken возвращается при нарушении уникальности booking_code
	ErrBookingCodeTaken = errors.New("reservation.repository: booking code already taken")

	// ErrStaffOverlap возвращается при нарушении exclusion-ограничения на пересечение времени сотрудника
	ErrStaffOverlap = errors.New("reservation.repository: staff time range overlaps")

	// ErrStatusMismatch возвращается, когда текущий статус в БД отличается от ожидаемого
	ErrStatusMismatch = errors.New("reservation.repository: status changed concurrently")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")
)
