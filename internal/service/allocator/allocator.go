package allocator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-RoomBookingService/internal/domain"
	"github.com/m04kA/SMC-RoomBookingService/internal/service/freeslots"
)

// AllocationLockKey ключ межинстансной блокировки распределения комнат.
// Не должен совпадать с ключами блокировок других подсистем.
const AllocationLockKey int64 = 0x524f4f4d414c4c4f // "ROOMALLO"

// Исходы распределения для метрик
const (
	OutcomeCommitted           = "committed"
	OutcomeExhausted           = "exhausted"
	OutcomeMaintenanceConflict = "maintenance_conflict"
	OutcomeStorageError        = "storage_error"
	OutcomeError               = "error"
)

// Allocator распределяет комнаты по запросам (интервал, количество людей).
// Свободные интервалы всех комнат живут в одном freeslots.Store под одним мьютексом;
// перед каждой операцией состояние пересобирается из хранилища бронирований
// под межинстансной блокировкой.
type Allocator struct {
	mu    sync.Mutex
	slots *freeslots.Store

	catalog     *domain.RoomCatalog
	maintenance []domain.TimeSlot
	lockKey     int64

	bookings     BookingStore
	locker       Locker
	timeProvider TimeProvider
	recorder     Recorder
	logger       Logger
}

// Option настраивает Allocator
type Option func(*Allocator)

// WithTimeProvider подменяет источник текущего времени
func WithTimeProvider(p TimeProvider) Option {
	return func(a *Allocator) { a.timeProvider = p }
}

// WithRecorder включает сбор метрик
func WithRecorder(r Recorder) Option {
	return func(a *Allocator) {
		if r != nil {
			a.recorder = r
		}
	}
}

// WithLockKey переопределяет ключ межинстансной блокировки
func WithLockKey(key int64) Option {
	return func(a *Allocator) { a.lockKey = key }
}

// NewAllocator создает аллокатор; окна обслуживания сразу вычитаются из всех комнат
func NewAllocator(
	catalog *domain.RoomCatalog,
	maintenance []domain.TimeSlot,
	bookings BookingStore,
	locker Locker,
	logger Logger,
	opts ...Option,
) *Allocator {
	a := &Allocator{
		slots:        freeslots.New(catalog.Names(), maintenance),
		catalog:      catalog,
		maintenance:  append([]domain.TimeSlot(nil), maintenance...),
		lockKey:      AllocationLockKey,
		bookings:     bookings,
		locker:       locker,
		timeProvider: &RealTimeProvider{},
		recorder:     nopRecorder{},
		logger:       logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate находит самую маленькую подходящую комнату, свободную на весь slot,
// занимает в ней slot и сохраняет бронирование.
//
// Ошибки:
//   - *MaintenanceConflictError (ErrMaintenanceConflict) - slot задевает окно обслуживания, блокировка не берется
//   - *CapacityExhaustedError (ErrCapacityExhausted) - ни одна комната не подошла
//   - ErrStorageInconsistency - слот был занят в памяти, но бронирование не сохранилось; разбиение откатывается
func (a *Allocator) Allocate(ctx context.Context, slot domain.TimeSlot, numberOfPeople int) (domain.RoomName, error) {
	a.logger.Info("Allocate: slot=%s, people=%d", slot, numberOfPeople)

	// 1. Валидация
	if numberOfPeople < domain.MinNumberOfPeople {
		a.recorder.ObserveAllocation(OutcomeError)
		return "", fmt.Errorf("%w: numberOfPeople must be at least %d", ErrInvalidInput, domain.MinNumberOfPeople)
	}
	if err := a.checkNotMaintenanceWindow(slot); err != nil {
		a.logger.Warn("Allocate: slot=%s falls on maintenance: %v", slot, err)
		a.recorder.ObserveAllocation(OutcomeMaintenanceConflict)
		return "", err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var (
		booked      domain.RoomName
		beforeSplit []domain.TimeSlot
		innerErr    error
	)

	// 2. Блокировка -> 3. сверка -> 4. поиск и фиксация
	lockErr := a.withLock(ctx, func(lockCtx context.Context) error {
		now := a.timeProvider.Now()

		if err := a.reconcile(lockCtx, now); err != nil {
			innerErr = err
			return err
		}

		for _, room := range a.catalog.SufficientRooms(numberOfPeople) {
			snapshot := a.slots.Snapshot(room.Name, nil)
			if !a.slots.TryReserve(room.Name, slot) {
				continue
			}

			booking := domain.NewBooking(room.Name, now, slot, numberOfPeople)
			if _, err := a.bookings.Create(lockCtx, booking); err != nil {
				a.slots.Restore(room.Name, snapshot)
				innerErr = fmt.Errorf("%w: room=%s, slot=%s: %v", ErrStorageInconsistency, room.Name, slot, err)
				return innerErr
			}

			booked = room.Name
			beforeSplit = snapshot
			return nil
		}

		// 5. Ни одна комната не подошла
		innerErr = &CapacityExhaustedError{Slot: slot, NumberOfPeople: numberOfPeople}
		return innerErr
	})

	switch {
	case innerErr != nil:
		a.recordFailure(slot, numberOfPeople, innerErr)
		return "", innerErr

	case lockErr != nil && booked != "":
		// fn отработал, но снятие блокировки (commit) не удалось: запись не гарантирована
		a.slots.Restore(booked, beforeSplit)
		err := fmt.Errorf("%w: room=%s, slot=%s: release lock: %v", ErrStorageInconsistency, booked, slot, lockErr)
		a.recordFailure(slot, numberOfPeople, err)
		return "", err

	case lockErr != nil:
		err := fmt.Errorf("%w: Allocate - acquire lock: %v", ErrInternal, lockErr)
		a.recordFailure(slot, numberOfPeople, err)
		return "", err
	}

	a.recorder.ObserveAllocation(OutcomeCommitted)
	a.logger.Info("Allocate: booked room=%s for slot=%s, people=%d", booked, slot, numberOfPeople)
	return booked, nil
}

// Availability возвращает свободные интервалы всех комнат в порядке поиска,
// опционально обрезанные по bounds. Состояние сверяется с хранилищем так же, как в Allocate.
func (a *Allocator) Availability(ctx context.Context, bounds *domain.TimeSlot) ([]domain.RoomSlots, error) {
	if bounds != nil {
		a.logger.Info("Availability: bounds=%s", *bounds)
	} else {
		a.logger.Info("Availability: full day")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var result []domain.RoomSlots
	err := a.withLock(ctx, func(lockCtx context.Context) error {
		if err := a.reconcile(lockCtx, a.timeProvider.Now()); err != nil {
			return err
		}

		rooms := a.catalog.Rooms()
		result = make([]domain.RoomSlots, 0, len(rooms))
		for _, room := range rooms {
			result = append(result, domain.RoomSlots{
				Room:  room,
				Slots: a.slots.Snapshot(room.Name, bounds),
			})
		}
		return nil
	})
	if err != nil {
		a.logger.Error("Availability: failed: %v", err)
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: Availability - acquire lock: %v", ErrInternal, err)
	}

	return result, nil
}

// checkNotMaintenanceWindow проверяет границы включительно:
// бронирование, заканчивающееся ровно в начале окна, тоже отклоняется
func (a *Allocator) checkNotMaintenanceWindow(slot domain.TimeSlot) error {
	for _, window := range a.maintenance {
		if window.TouchesInclusive(slot) {
			return &MaintenanceConflictError{Slot: slot, Window: window}
		}
	}
	return nil
}

// reconcile пересобирает свободные интервалы: окна обслуживания + все бронирования дня.
// Повторное применение уже учтенного бронирования просто не находит свободного места - это не ошибка.
func (a *Allocator) reconcile(ctx context.Context, now time.Time) error {
	bookings, err := a.bookings.FetchBookingsForDay(ctx, domain.DateOnly(now))
	if err != nil {
		a.logger.Error("reconcile: failed to fetch bookings: %v", err)
		return fmt.Errorf("%w: reconcile - fetch bookings: %v", ErrInternal, err)
	}

	a.slots.Reset()

	applied := 0
	for _, name := range a.slots.Rooms() {
		for _, booking := range bookings[name] {
			if a.slots.TryReserve(name, booking.Slot) {
				applied++
			}
		}
	}

	for name, roomBookings := range bookings {
		if _, ok := a.catalog.Get(name); !ok {
			a.logger.Warn("reconcile: %d bookings for unknown room=%s ignored", len(roomBookings), name)
		}
	}

	a.logger.Info("reconcile: applied %d bookings", applied)
	return nil
}

func (a *Allocator) withLock(ctx context.Context, fn func(ctx context.Context) error) error {
	requestedAt := time.Now()
	return a.locker.WithLock(ctx, a.lockKey, func(lockCtx context.Context) error {
		a.recorder.ObserveLockWait(time.Since(requestedAt))
		return fn(lockCtx)
	})
}

func (a *Allocator) recordFailure(slot domain.TimeSlot, numberOfPeople int, err error) {
	switch {
	case errors.Is(err, ErrCapacityExhausted):
		a.logger.Warn("Allocate: no room for slot=%s, people=%d", slot, numberOfPeople)
		a.recorder.ObserveAllocation(OutcomeExhausted)
	case errors.Is(err, ErrStorageInconsistency):
		a.logger.Error("Allocate: storage inconsistency for slot=%s: %v", slot, err)
		a.recorder.ObserveAllocation(OutcomeStorageError)
	default:
		a.logger.Error("Allocate: failed for slot=%s: %v", slot, err)
		a.recorder.ObserveAllocation(OutcomeError)
	}
}
