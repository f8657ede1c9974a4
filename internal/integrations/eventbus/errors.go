package eventbus

import "errors"

var (
	// ErrConnect возвращается, если не удалось подключиться к брокеру
	ErrConnect = errors.New("eventbus: failed to connect to broker")

	// ErrPublish возвращается при ошибке публикации сообщения
	ErrPublish = errors.New("eventbus: failed to publish message")

	// ErrQueueFull возвращается, если буфер событий заполнен
	ErrQueueFull = errors.New("eventbus: event queue is full")

	// ErrClosed возвращается при публикации после Close
	ErrClosed = errors.New("eventbus: publisher is closed")

	// ErrEncode возвращается при ошибке сериализации события
	ErrEncode = errors.New("eventbus: failed to encode event")
)
