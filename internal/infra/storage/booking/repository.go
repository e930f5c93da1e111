package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-RoomBookingService/internal/domain"
	"github.com/m04kA/SMC-RoomBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RoomBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-RoomBookingService/pkg/types"
)

const tableBookings = "bookings"

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет бронирование.
// Если в контексте есть транзакция (например, открытая вместе с advisory lock), запись идет в неё.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableBookings).
		Columns(
			"id",
			"room_name",
			"booking_day",
			"from_time",
			"to_time",
			"booking_size",
		).
		Values(
			booking.ID,
			string(booking.RoomName),
			booking.Day.Format(domain.DateFormat),
			booking.Slot.From,
			booking.Slot.To,
			booking.NumberOfPeople,
		).
		Suffix("RETURNING created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt time.Time
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt
	return booking, nil
}

// FetchBookingsForDay возвращает все бронирования дня, сгруппированные по комнатам и упорядоченные по началу
func (r *Repository) FetchBookingsForDay(ctx context.Context, day time.Time) (map[domain.RoomName][]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"room_name",
		"booking_day",
		"from_time",
		"to_time",
		"booking_size",
		"created_at",
	).
		From(tableBookings).
		Where(squirrel.Eq{"booking_day": day.Format(domain.DateFormat)}).
		OrderBy("room_name", "from_time").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FetchBookingsForDay - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FetchBookingsForDay - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make(map[domain.RoomName][]*domain.Booking)
	for rows.Next() {
		var (
			b        domain.Booking
			roomName string
			from, to types.TimeString
		)
		if err := rows.Scan(&b.ID, &roomName, &b.Day, &from, &to, &b.NumberOfPeople, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: FetchBookingsForDay - scan: %v", ErrScanRow, err)
		}

		slot, err := domain.NewTimeSlot(from, to)
		if err != nil {
			return nil, fmt.Errorf("%w: FetchBookingsForDay - booking id=%s: %v", ErrInvalidBooking, b.ID, err)
		}
		b.RoomName = domain.RoomName(roomName)
		b.Slot = slot

		result[b.RoomName] = append(result[b.RoomName], &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FetchBookingsForDay - rows iteration: %v", ErrScanRow, err)
	}

	return result, nil
}
