package pglock

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RoomBookingService/pkg/dbmetrics"
)

// ErrAcquire возвращается, если не удалось взять advisory lock
var ErrAcquire = errors.New("pglock: failed to acquire advisory lock")

const acquireQuery = "SELECT pg_advisory_xact_lock($1)"

// TransactionManager открывает транзакцию и кладет её в контекст
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker межинстансная блокировка на pg_advisory_xact_lock.
// Блокировка живет ровно столько, сколько транзакция: снимается на commit/rollback.
// Запросы внутри fn, сделанные через dbmetrics.GetExecutor, идут в ту же транзакцию.
type Locker struct {
	db        dbmetrics.DBExecutor
	txManager TransactionManager
}

// NewLocker создает Locker
func NewLocker(db dbmetrics.DBExecutor, txManager TransactionManager) *Locker {
	return &Locker{db: db, txManager: txManager}
}

// WithLock ждет advisory lock по key (отмена только через ctx) и выполняет fn внутри транзакции
func (l *Locker) WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error {
	return l.txManager.Do(ctx, func(txCtx context.Context) error {
		executor := dbmetrics.GetExecutor(txCtx, l.db)

		if _, err := executor.ExecContext(txCtx, acquireQuery, key); err != nil {
			return fmt.Errorf("%w: key=%d: %v", ErrAcquire, key, err)
		}

		return fn(txCtx)
	})
}
