package allocator

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RoomBookingService/internal/domain"
)

// BookingStore интерфейс хранилища бронирований
type BookingStore interface {
	// FetchBookingsForDay возвращает все бронирования дня, сгруппированные по комнатам
	FetchBookingsForDay(ctx context.Context, day time.Time) (map[domain.RoomName][]*domain.Booking, error)
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// Locker межинстансная эксклюзивная блокировка.
// fn выполняется, пока блокировка удерживается; блокировка снимается по выходу из fn.
type Locker interface {
	WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Recorder собирает метрики аллокатора
type Recorder interface {
	ObserveAllocation(outcome string)
	ObserveLockWait(d time.Duration)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

type nopRecorder struct{}

func (nopRecorder) ObserveAllocation(string)       {}
func (nopRecorder) ObserveLockWait(time.Duration) {}
