package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-RoomBookingService/internal/domain"
	"github.com/m04kA/SMC-RoomBookingService/pkg/types"
)

// buildBounds превращает необязательные границы запроса в интервал выборки
func buildBounds(req *Request) (*domain.TimeSlot, error) {
	if req.From.IsZero() && req.To.IsZero() {
		return nil, nil
	}

	from, to := req.From, req.To
	if from.IsZero() {
		from = types.TimeString(domain.DayStart)
	}
	if to.IsZero() {
		to = types.TimeString(domain.DayEnd)
	}

	bounds, err := domain.NewTimeSlot(from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return &bounds, nil
}
