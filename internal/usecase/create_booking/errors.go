package create_booking

import "errors"

var (
	// ErrInvalidDate возвращается, когда бронирование запрошено не на сегодня
	ErrInvalidDate = errors.New("create_booking: can only book rooms for today")

	// ErrInvalidNumberOfPeople возвращается, когда количество людей меньше одного
	ErrInvalidNumberOfPeople = errors.New("create_booking: invalid number of people")

	// ErrInvalidTimeSlot возвращается, когда интервал бронирования некорректен
	ErrInvalidTimeSlot = errors.New("create_booking: invalid time slot")

	// ErrMaintenanceConflict возвращается, когда интервал попадает на окно обслуживания
	ErrMaintenanceConflict = errors.New("create_booking: booking falls on maintenance")

	// ErrNoRoomAvailable возвращается, когда все подходящие комнаты заняты
	ErrNoRoomAvailable = errors.New("create_booking: no rooms available")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)

// DetailedError ошибка с сообщением для клиента.
// errors.Is(err, Kind) позволяет выбрать HTTP статус, Message уходит в тело ответа.
type DetailedError struct {
	Kind    error
	Message string
}

func (e *DetailedError) Error() string {
	return e.Kind.Error() + ": " + e.Message
}

func (e *DetailedError) Unwrap() error {
	return e.Kind
}

func detailed(kind error, message string) error {
	return &DetailedError{Kind: kind, Message: message}
}
