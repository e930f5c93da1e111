package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrAcquire возвращается, если аренду не удалось получить до отмены контекста
	ErrAcquire = errors.New("redislock: failed to acquire lease")

	// ErrRedis возвращается при ошибке обращения к redis
	ErrRedis = errors.New("redislock: redis error")
)

// releaseScript удаляет ключ, только если он все еще принадлежит владельцу токена
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

const releaseTimeout = 2 * time.Second

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// Locker межинстансная блокировка на аренде ключа в redis (SET NX PX).
// В отличие от advisory lock в postgres аренда ограничена по времени:
// leaseTTL должен быть заметно больше времени работы критической секции.
type Locker struct {
	rdb           redis.Cmdable
	prefix        string
	leaseTTL      time.Duration
	retryInterval time.Duration
	logger        Logger
}

// Option настраивает Locker
type Option func(*Locker)

// WithPrefix задает префикс ключей
func WithPrefix(prefix string) Option {
	return func(l *Locker) { l.prefix = prefix }
}

// WithLeaseTTL задает время жизни аренды
func WithLeaseTTL(d time.Duration) Option {
	return func(l *Locker) {
		if d > 0 {
			l.leaseTTL = d
		}
	}
}

// WithRetryInterval задает период повторных попыток захвата
func WithRetryInterval(d time.Duration) Option {
	return func(l *Locker) {
		if d > 0 {
			l.retryInterval = d
		}
	}
}

// NewLocker создает Locker
func NewLocker(rdb redis.Cmdable, logger Logger, opts ...Option) *Locker {
	l := &Locker{
		rdb:           rdb,
		prefix:        "room-booking:lock",
		leaseTTL:      10 * time.Second,
		retryInterval: 20 * time.Millisecond,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WithLock ждет аренду ключа key (отмена только через ctx), выполняет fn и освобождает аренду
func (l *Locker) WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error {
	name := l.keyName(key)
	token := uuid.NewString()

	if err := l.acquire(ctx, name, token); err != nil {
		return err
	}

	fnErr := fn(ctx)

	// Освобождаем даже при отмененном запросе
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	released, err := releaseScript.Run(releaseCtx, l.rdb, []string{name}, token).Int64()
	switch {
	case err != nil:
		l.logger.Warn("redislock: failed to release key=%s: %v", name, err)
	case released == 0:
		// Аренда истекла во время работы fn: изменения fn уже применены, следующая сверка их увидит
		l.logger.Warn("redislock: lease for key=%s expired before release", name)
	}

	return fnErr
}

func (l *Locker) acquire(ctx context.Context, name, token string) error {
	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, name, token, l.leaseTTL).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("%w: key=%s: %v", ErrAcquire, name, ctxErr)
			}
			return fmt.Errorf("%w: SETNX key=%s: %v", ErrRedis, name, err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: key=%s: %v", ErrAcquire, name, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *Locker) keyName(key int64) string {
	return fmt.Sprintf("%s:%d", l.prefix, key)
}
