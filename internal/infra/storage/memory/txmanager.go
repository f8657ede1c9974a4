package memory

import "context"

// TxManager заглушка менеджера транзакций для in-memory хранилища.
// Атомарность отдельных операций обеспечивает мьютекс Store.
type TxManager struct{}

// DoSerializable выполняет fn без транзакции
func (TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// DoReadOnly выполняет fn без транзакции
func (TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
