package get_available_slots

import (
	getAvailableSlots "github.com/m04kA/SMC-RoomBookingService/internal/usecase/get_available_slots"
)

// TimeSlotResponse свободный интервал
type TimeSlotResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// RoomResponse комната и её вместимость
type RoomResponse struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// AvailableSlotsResponse HTTP response model.
// slots - свободные интервалы по имени комнаты, rooms - комнаты в порядке поиска
type AvailableSlotsResponse struct {
	Slots map[string][]TimeSlotResponse `json:"slots"`
	Rooms []RoomResponse                `json:"rooms"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(resp *getAvailableSlots.Response) AvailableSlotsResponse {
	out := AvailableSlotsResponse{
		Slots: make(map[string][]TimeSlotResponse, len(resp.Rooms)),
		Rooms: make([]RoomResponse, 0, len(resp.Rooms)),
	}

	for _, rs := range resp.Rooms {
		slots := make([]TimeSlotResponse, 0, len(rs.Slots))
		for _, s := range rs.Slots {
			slots = append(slots, TimeSlotResponse{From: s.From.String(), To: s.To.String()})
		}
		out.Slots[string(rs.Room.Name)] = slots
		out.Rooms = append(out.Rooms, RoomResponse{Name: string(rs.Room.Name), Capacity: rs.Room.Capacity})
	}

	return out
}
