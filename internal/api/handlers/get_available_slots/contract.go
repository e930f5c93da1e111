package get_available_slots

import (
	"context"

	getAvailableSlots "github.com/m04kA/SMC-RoomBookingService/internal/usecase/get_available_slots"
)

// AvailabilityLister возвращает свободные интервалы комнат (реализуется usecase get_available_slots)
type AvailabilityLister interface {
	Execute(ctx context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error)
}

// Logger пишет исходы обработки запроса: Info для успеха, Warn для ошибок клиента, Error для внутренних
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
