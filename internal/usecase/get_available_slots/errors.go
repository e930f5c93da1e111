package get_available_slots

import "errors"

var (
	// ErrInvalidRange возвращается, когда границы выборки некорректны
	ErrInvalidRange = errors.New("get_available_slots: invalid time range")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
