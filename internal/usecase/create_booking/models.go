package create_booking

import (
	"time"

	"github.com/m04kA/SMC-RoomBookingService/internal/domain"
	"github.com/m04kA/SMC-RoomBookingService/pkg/types"
)

// Request модель запроса на бронирование комнаты
type Request struct {
	Date           time.Time        // Дата бронирования (без времени), только сегодня
	NumberOfPeople int              // Количество участников
	From           types.TimeString // Начало интервала, включительно
	To             types.TimeString // Конец интервала, не включительно
}

// Response модель ответа с выбранной комнатой
type Response struct {
	RoomName domain.RoomName
}
