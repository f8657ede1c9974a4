package locks

import "context"

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoReadCommitted(ctx context.Context, fn func(ctx context.Context) error) error
}
