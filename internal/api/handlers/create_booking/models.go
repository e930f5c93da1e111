package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-RoomBookingService/internal/domain"
	createBooking "github.com/m04kA/SMC-RoomBookingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-RoomBookingService/pkg/types"
)

// TimeSlotRequest интервал бронирования
type TimeSlotRequest struct {
	From string `json:"from"` // "07:00"
	To   string `json:"to"`   // "07:30"
}

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	Date           string          `json:"date"` // "2025-10-15"
	NumberOfPeople int             `json:"numberOfPeople"`
	Booking        TimeSlotRequest `json:"booking"`
}

// CreateBookingResponse HTTP response model
type CreateBookingResponse struct {
	RoomName string `json:"roomName"`
}

// parseError различает, какое поле не удалось разобрать
type parseError struct {
	field string
	err   error
}

func (e *parseError) Error() string {
	return fmt.Sprintf("%s: %v", e.field, e.err)
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest() (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, &parseError{field: "date", err: err}
	}

	from, err := types.NewTimeStringFromString(r.Booking.From)
	if err != nil {
		return nil, &parseError{field: "booking.from", err: err}
	}

	to, err := types.NewTimeStringFromString(r.Booking.To)
	if err != nil {
		return nil, &parseError{field: "booking.to", err: err}
	}

	return &createBooking.Request{
		Date:           date,
		NumberOfPeople: r.NumberOfPeople,
		From:           from,
		To:             to,
	}, nil
}
