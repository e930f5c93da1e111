package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-RoomBookingService/internal/domain"
)

// validateRequest валидирует входные данные и строит интервал бронирования
func validateRequest(req *Request, now time.Time) (domain.TimeSlot, error) {
	// Бронировать можно только на сегодня
	if !domain.IsSameDay(req.Date, now) {
		return domain.TimeSlot{}, detailed(ErrInvalidDate, fmt.Sprintf(
			"Can only book rooms for today '%s', received '%s' in a request.",
			now.Format(domain.DateFormat), req.Date.Format(domain.DateFormat)))
	}

	if req.NumberOfPeople < domain.MinNumberOfPeople {
		return domain.TimeSlot{}, detailed(ErrInvalidNumberOfPeople, fmt.Sprintf(
			"Number of people cannot be a negative number, received '%d' in a request.", req.NumberOfPeople))
	}

	slot, err := domain.NewTimeSlot(req.From, req.To)
	if err != nil {
		return domain.TimeSlot{}, detailed(ErrInvalidTimeSlot, fmt.Sprintf(
			"Booking must start before it ends, received '%s'-'%s' in a request.", req.From, req.To))
	}

	return slot, nil
}
