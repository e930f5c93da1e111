package booking

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RoomBookingService/internal/domain"
	"github.com/m04kA/SMC-RoomBookingService/pkg/dbmetrics"
)

const (
	insertQuery = "INSERT INTO bookings (id,room_name,booking_day,from_time,to_time,booking_size) " +
		"VALUES ($1,$2,$3,$4,$5,$6) RETURNING created_at"
	selectQuery = "SELECT id, room_name, booking_day, from_time, to_time, booking_size, created_at " +
		"FROM bookings WHERE booking_day = $1 ORDER BY room_name, from_time"
)

var day = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

func newRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepository(t)
	booking := domain.NewBooking("AMAZE", day.Add(10*time.Hour), domain.MustTimeSlot("10:00", "11:30"), 2)
	createdAt := time.Date(2025, 10, 15, 9, 59, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(insertQuery)).
		WithArgs(sqlmock.AnyArg(), "AMAZE", "2025-10-15", "10:00", "11:30", 2).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	created, err := repo.Create(context.Background(), booking)
	require.NoError(t, err)
	assert.Equal(t, createdAt, created.CreatedAt)
	assert.Equal(t, domain.RoomName("AMAZE"), created.RoomName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ExecError(t *testing.T) {
	repo, mock := newRepository(t)
	booking := domain.NewBooking("AMAZE", day, domain.MustTimeSlot("10:00", "11:30"), 2)

	mock.ExpectQuery(regexp.QuoteMeta(insertQuery)).WillReturnError(errors.New("duplicate key"))

	_, err := repo.Create(context.Background(), booking)
	assert.ErrorIs(t, err, ErrExecQuery)
}

func TestCreate_UsesTransactionFromContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	wrapped := dbmetrics.Wrap(db, nil)
	repo := NewRepository(wrapped)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectRollback()

	tx, err := wrapped.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	ctx := dbmetrics.WithTx(context.Background(), tx)

	_, err = repo.Create(ctx, domain.NewBooking("BEAUTY", day, domain.MustTimeSlot("01:00", "02:00"), 5))
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchBookingsForDay(t *testing.T) {
	repo, mock := newRepository(t)
	id1, id2, id3 := uuid.New(), uuid.New(), uuid.New()
	createdAt := time.Date(2025, 10, 15, 8, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "room_name", "booking_day", "from_time", "to_time", "booking_size", "created_at"}).
		AddRow(id1.String(), "AMAZE", day, "00:00", "04:30", 2, createdAt).
		AddRow(id2.String(), "AMAZE", day, "10:00", "11:00", 3, createdAt).
		AddRow(id3.String(), "STRIVE", day, "14:00", "15:00", 15, createdAt)

	mock.ExpectQuery(regexp.QuoteMeta(selectQuery)).WithArgs("2025-10-15").WillReturnRows(rows)

	result, err := repo.FetchBookingsForDay(context.Background(), day.Add(15*time.Hour))
	require.NoError(t, err)

	require.Len(t, result["AMAZE"], 2)
	require.Len(t, result["STRIVE"], 1)
	assert.Empty(t, result["BEAUTY"])

	first := result["AMAZE"][0]
	assert.Equal(t, id1, first.ID)
	assert.Equal(t, domain.MustTimeSlot("00:00", "04:30"), first.Slot)
	assert.Equal(t, 2, first.NumberOfPeople)
	assert.Equal(t, day, first.Day)
	assert.Equal(t, domain.MustTimeSlot("10:00", "11:00"), result["AMAZE"][1].Slot)
	assert.Equal(t, domain.RoomName("STRIVE"), result["STRIVE"][0].RoomName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchBookingsForDay_Empty(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_name", "booking_day", "from_time", "to_time", "booking_size", "created_at"}))

	result, err := repo.FetchBookingsForDay(context.Background(), day)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestFetchBookingsForDay_InvalidRow(t *testing.T) {
	repo, mock := newRepository(t)

	rows := sqlmock.NewRows([]string{"id", "room_name", "booking_day", "from_time", "to_time", "booking_size", "created_at"}).
		AddRow(uuid.NewString(), "AMAZE", day, "11:00", "10:00", 2, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(selectQuery)).WillReturnRows(rows)

	_, err := repo.FetchBookingsForDay(context.Background(), day)
	assert.ErrorIs(t, err, ErrInvalidBooking)
}

func TestFetchBookingsForDay_QueryError(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectQuery)).WillReturnError(errors.New("connection refused"))

	_, err := repo.FetchBookingsForDay(context.Background(), day)
	assert.ErrorIs(t, err, ErrExecQuery)
}

func TestFetchBookingsForDay_ScanError(t *testing.T) {
	repo, mock := newRepository(t)

	rows := sqlmock.NewRows([]string{"id", "room_name", "booking_day", "from_time", "to_time", "booking_size", "created_at"}).
		AddRow("not-a-uuid", "AMAZE", day, "10:00", "11:00", 2, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(selectQuery)).WillReturnRows(rows)

	_, err := repo.FetchBookingsForDay(context.Background(), day)
	assert.ErrorIs(t, err, ErrScanRow)
}
