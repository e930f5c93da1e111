package allocator

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RoomBookingService/internal/domain"
)

var (
	// ErrMaintenanceConflict возвращается, когда запрошенный интервал попадает на окно обслуживания
	ErrMaintenanceConflict = errors.New("allocator: booking falls on maintenance window")

	// ErrCapacityExhausted возвращается, когда ни одна подходящая комната не свободна в этот интервал
	ErrCapacityExhausted = errors.New("allocator: all rooms are booked")

	// ErrStorageInconsistency возвращается, когда слот занят в памяти, но бронирование не сохранилось
	ErrStorageInconsistency = errors.New("allocator: booking was not persisted")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("allocator: invalid input data")

	// ErrInternal возвращается при внутренних ошибках аллокатора
	ErrInternal = errors.New("allocator: internal error")
)

// MaintenanceConflictError несет интервал запроса и окно обслуживания, на которое он попал
type MaintenanceConflictError struct {
	Slot   domain.TimeSlot
	Window domain.TimeSlot
}

func (e *MaintenanceConflictError) Error() string {
	return fmt.Sprintf("Failed to block a room between %s and %s due to maintenance.", e.Slot.From, e.Slot.To)
}

func (e *MaintenanceConflictError) Unwrap() error {
	return ErrMaintenanceConflict
}

// CapacityExhaustedError несет интервал запроса и требуемую вместимость
type CapacityExhaustedError struct {
	Slot           domain.TimeSlot
	NumberOfPeople int
}

func (e *CapacityExhaustedError) Error() string {
	return fmt.Sprintf("No rooms are available for %d between %s and %s.", e.NumberOfPeople, e.Slot.From, e.Slot.To)
}

func (e *CapacityExhaustedError) Unwrap() error {
	return ErrCapacityExhausted
}
