package middleware

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-RoomBookingService/internal/api/handlers"
)

const msgTooManyRequests = "слишком много запросов, попробуйте позже"

// RateLimitRecorder учитывает отклоненные запросы (реализуется metrics.Metrics)
type RateLimitRecorder interface {
	ObserveRateLimited(path string)
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter token bucket на каждый адрес клиента
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	trusted []netip.Prefix

	recorder RateLimitRecorder
	logger   Logger
}

// NewRateLimiter создает лимитер; recorder может быть nil
func NewRateLimiter(rps float64, burst int, recorder RateLimitRecorder, logger Logger) *RateLimiter {
	return &RateLimiter{
		entries:  make(map[string]*limiterEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		idleTTL:  15 * time.Minute,
		recorder: recorder,
		logger:   logger,
	}
}

// TrustProxies задает прокси, которым разрешено передавать адрес клиента в X-Forwarded-For.
// Без доверенных прокси ключом лимита всегда служит адрес соединения.
func (l *RateLimiter) TrustProxies(prefixes []netip.Prefix) {
	l.trusted = append([]netip.Prefix(nil), prefixes...)
}

// Middleware отклоняет запросы сверх лимита ответом 429
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := l.clientKey(r)
		if !l.get(key).Allow() {
			path := routePath(r)
			l.logger.Warn("Rate limit exceeded: client=%s, path=%s", key, path)
			if l.recorder != nil {
				l.recorder.ObserveRateLimited(path)
			}
			w.Header().Set("Retry-After", "1")
			handlers.RespondTooManyRequests(w, msgTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartJanitor периодически удаляет лимитеры неактивных клиентов до отмены ctx
func (l *RateLimiter) StartJanitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.cleanup(time.Now())
			}
		}
	}()
}

func (l *RateLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[key]; ok {
		e.lastSeen = time.Now()
		return e.limiter
	}

	lim := rate.NewLimiter(l.rps, l.burst)
	l.entries[key] = &limiterEntry{limiter: lim, lastSeen: time.Now()}
	return lim
}

func (l *RateLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}

// clientKey адрес соединения; если соединение пришло от доверенного прокси,
// то самый правый адрес X-Forwarded-For, не принадлежащий доверенным прокси
func (l *RateLimiter) clientKey(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	peerAddr, err := netip.ParseAddr(peer)
	if err != nil || !l.isTrusted(peerAddr) {
		return peer
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		if !l.isTrusted(hop) {
			return hop.String()
		}
	}
	return peer
}

func (l *RateLimiter) isTrusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range l.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(remoteAddr))
	if err == nil && host != "" {
		return host
	}
	return remoteAddr
}
