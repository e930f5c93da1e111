package redislock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *testLogger) Warn(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, v...))
}

func (l *testLogger) warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warns...)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestNewLocker_Options(t *testing.T) {
	l := NewLocker(nil, &testLogger{},
		WithPrefix("rooms"),
		WithLeaseTTL(3*time.Second),
		WithRetryInterval(5*time.Millisecond),
		WithLeaseTTL(0),
	)

	assert.Equal(t, "rooms:42", l.keyName(42))
	assert.Equal(t, 3*time.Second, l.leaseTTL)
	assert.Equal(t, 5*time.Millisecond, l.retryInterval)
}

func TestWithLock_HoldsLeaseDuringFn(t *testing.T) {
	mr, rdb := newRedis(t)
	l := NewLocker(rdb, &testLogger{}, WithPrefix("rooms"), WithLeaseTTL(5*time.Second))

	err := l.WithLock(context.Background(), 3, func(context.Context) error {
		require.True(t, mr.Exists("rooms:3"))
		assert.Equal(t, 5*time.Second, mr.TTL("rooms:3"))
		return nil
	})
	require.NoError(t, err)

	assert.False(t, mr.Exists("rooms:3"), "lease must be released")
}

func TestWithLock_ReturnsFnError(t *testing.T) {
	mr, rdb := newRedis(t)
	l := NewLocker(rdb, &testLogger{})
	boom := errors.New("boom")

	err := l.WithLock(context.Background(), 1, func(context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(l.keyName(1)), "lease is released on fn error too")
}

func TestWithLock_MutualExclusion(t *testing.T) {
	_, rdb := newRedis(t)
	l := NewLocker(rdb, &testLogger{}, WithRetryInterval(time.Millisecond))

	var (
		inside  int32
		maxSeen int32
		calls   int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithLock(context.Background(), 7, func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxSeen)
					if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				atomic.AddInt32(&calls, 1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen)
	assert.Equal(t, int32(8), calls)
}

func TestWithLock_WaitsForReleaseByOtherOwner(t *testing.T) {
	mr, rdb := newRedis(t)
	l := NewLocker(rdb, &testLogger{}, WithRetryInterval(time.Millisecond))
	require.NoError(t, mr.Set(l.keyName(5), "other-owner"))

	go func() {
		time.Sleep(20 * time.Millisecond)
		mr.Del(l.keyName(5))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	called := false
	err := l.WithLock(ctx, 5, func(context.Context) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
}

func TestWithLock_ContextCancelWhileWaiting(t *testing.T) {
	mr, rdb := newRedis(t)
	l := NewLocker(rdb, &testLogger{}, WithRetryInterval(5*time.Millisecond))
	require.NoError(t, mr.Set(l.keyName(1), "other-owner"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	called := false
	err := l.WithLock(ctx, 1, func(context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrAcquire)
	assert.False(t, called)

	// Чужая аренда не тронута
	owner, err := mr.Get(l.keyName(1))
	require.NoError(t, err)
	assert.Equal(t, "other-owner", owner)
}

func TestWithLock_ExpiredLeaseKeepsNewOwnerKey(t *testing.T) {
	mr, rdb := newRedis(t)
	logger := &testLogger{}
	l := NewLocker(rdb, logger, WithLeaseTTL(100*time.Millisecond))
	name := l.keyName(9)

	err := l.WithLock(context.Background(), 9, func(context.Context) error {
		// Аренда истекла, ключ успел занять другой экземпляр
		mr.FastForward(time.Second)
		require.False(t, mr.Exists(name))
		require.NoError(t, mr.Set(name, "other-owner"))
		return nil
	})
	require.NoError(t, err)

	owner, err := mr.Get(name)
	require.NoError(t, err)
	assert.Equal(t, "other-owner", owner)

	warns := logger.warnings()
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "expired before release")
}

func TestWithLock_RedisError(t *testing.T) {
	mr, rdb := newRedis(t)
	l := NewLocker(rdb, &testLogger{})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	mr.SetError("ERR server unavailable")

	called := false
	err := l.WithLock(context.Background(), 1, func(context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrRedis)
	assert.False(t, called)
}
