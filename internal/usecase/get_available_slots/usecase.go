package get_available_slots

import (
	"context"
	"fmt"
)

// UseCase use case для получения свободных интервалов комнат
type UseCase struct {
	allocator RoomAllocator
	logger    Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(allocator RoomAllocator, logger Logger) *UseCase {
	return &UseCase{
		allocator: allocator,
		logger:    logger,
	}
}

// Execute выполняет use case получения свободных интервалов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: from=%q, to=%q", req.From, req.To)

	// 1. Валидация границ
	bounds, err := buildBounds(req)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Снимок свободных интервалов после сверки с хранилищем
	rooms, err := uc.allocator.Availability(ctx, bounds)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get availability: %v", err)
		return nil, fmt.Errorf("%w: failed to get availability: %v", ErrInternal, err)
	}

	uc.logger.Info("GetAvailableSlots: returned %d rooms", len(rooms))

	return &Response{Rooms: rooms}, nil
}
