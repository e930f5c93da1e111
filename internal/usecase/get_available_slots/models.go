package get_available_slots

import (
	"github.com/m04kA/SMC-RoomBookingService/internal/domain"
	"github.com/m04kA/SMC-RoomBookingService/pkg/types"
)

// Request модель запроса свободных интервалов.
// Пустая граница означает край дня; обе пустые - весь день без обрезки.
type Request struct {
	From types.TimeString
	To   types.TimeString
}

// Response свободные интервалы по комнатам в порядке возрастания вместимости
type Response struct {
	Rooms []domain.RoomSlots
}
