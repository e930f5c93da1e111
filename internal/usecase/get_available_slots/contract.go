package get_available_slots

import (
	"context"

	"github.com/m04kA/SMC-RoomBookingService/internal/domain"
)

// RoomAllocator интерфейс распределителя комнат
type RoomAllocator interface {
	Availability(ctx context.Context, bounds *domain.TimeSlot) ([]domain.RoomSlots, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
