package update_add_ons

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("update_add_ons: internal error")
)
