package locks

import "errors"

var (
	// ErrAcquire возвращается, если блокировку не удалось взять до отмены контекста
	ErrAcquire = errors.New("locks: failed to acquire lock")

	// ErrRelease возвращается при ошибке снятия блокировки
	ErrRelease = errors.New("locks: failed to release lock")

	// ErrNoKeys возвращается, если не передан ни один ключ
	ErrNoKeys = errors.New("locks: no keys given")
)
