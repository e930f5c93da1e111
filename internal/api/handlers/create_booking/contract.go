package create_booking

import (
	"context"

	createBooking "github.com/m04kA/SMC-RoomBookingService/internal/usecase/create_booking"
)

// RoomBooker бронирует комнату под запрос (реализуется usecase create_booking).
// Ошибки валидации и конфликтов приходят как *createBooking.DetailedError.
type RoomBooker interface {
	Execute(ctx context.Context, req *createBooking.Request) (*createBooking.Response, error)
}

// Logger пишет исходы обработки запроса: Info для успеха, Warn для ошибок клиента, Error для внутренних
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
