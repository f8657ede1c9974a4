package locks

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
)

const advisoryLockQuery = "SELECT pg_advisory_xact_lock(hashtext($1))"

// Postgres блокировка через pg_advisory_xact_lock.
// Блокировки живут до конца транзакции, поэтому fn выполняется в той же транзакции
// и ключи отпускаются только после commit.
// Транзакция READ COMMITTED: снимок берется заново для каждого запроса, и после ожидания
// ключа fn видит все, что закоммитил предыдущий владелец. Вложенный DoSerializable
// переиспользует эту транзакцию.
type Postgres struct {
	db        dbmetrics.DBExecutor
	txManager TransactionManager
}

// NewPostgres создает locker на advisory-блокировках PostgreSQL
func NewPostgres(db dbmetrics.DBExecutor, txManager TransactionManager) *Postgres {
	return &Postgres{db: db, txManager: txManager}
}

// WithLock открывает транзакцию, берет ключи и выполняет в ней fn
func (p *Postgres) WithLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	keys = normalize(keys)
	if len(keys) == 0 {
		return ErrNoKeys
	}

	return p.txManager.DoReadCommitted(ctx, func(txCtx context.Context) error {
		executor := dbmetrics.GetExecutor(txCtx, p.db)
		for _, key := range keys {
			if _, err := executor.ExecContext(txCtx, advisoryLockQuery, key); err != nil {
				return fmt.Errorf("%w: key=%s: %w", ErrAcquire, key, err)
			}
		}
		return fn(txCtx)
	})
}
