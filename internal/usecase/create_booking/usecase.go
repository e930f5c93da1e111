package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RoomBookingService/internal/domain"
	"github.com/m04kA/SMC-RoomBookingService/internal/service/allocator"
)

// UseCase use case для бронирования комнаты
type UseCase struct {
	allocator    RoomAllocator
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(allocator RoomAllocator, logger Logger) *UseCase {
	return &UseCase{
		allocator:    allocator,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case бронирования комнаты.
// Выбор комнаты и сохранение бронирования выполняет аллокатор под межинстансной блокировкой.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: date=%s, people=%d, slot=%s-%s",
		req.Date.Format(domain.DateFormat), req.NumberOfPeople, req.From, req.To)

	// 1. Валидация входных данных
	slot, err := validateRequest(req, uc.timeProvider.Now())
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Распределяем комнату
	room, err := uc.allocator.Allocate(ctx, slot, req.NumberOfPeople)
	if err != nil {
		switch {
		case errors.Is(err, allocator.ErrMaintenanceConflict):
			uc.logger.Warn("CreateBooking: slot=%s falls on maintenance", slot)
			return nil, detailed(ErrMaintenanceConflict, err.Error())

		case errors.Is(err, allocator.ErrCapacityExhausted):
			uc.logger.Warn("CreateBooking: no room for slot=%s, people=%d", slot, req.NumberOfPeople)
			return nil, detailed(ErrNoRoomAvailable, err.Error())

		case errors.Is(err, allocator.ErrInvalidInput):
			uc.logger.Warn("CreateBooking: rejected by allocator: %v", err)
			return nil, detailed(ErrInvalidNumberOfPeople, err.Error())
		}

		uc.logger.Error("CreateBooking: failed to allocate room: %v", err)
		return nil, fmt.Errorf("%w: failed to allocate room: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateBooking: successfully booked room=%s for slot=%s", room, slot)

	return &Response{RoomName: room}, nil
}
