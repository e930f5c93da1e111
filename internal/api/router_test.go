package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	createBookingHandler "github.com/m04kA/SMC-RoomBookingService/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-RoomBookingService/internal/api/handlers/get_available_slots"
	"github.com/m04kA/SMC-RoomBookingService/internal/domain"
	"github.com/m04kA/SMC-RoomBookingService/internal/service/allocator"
	createBookingUC "github.com/m04kA/SMC-RoomBookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-RoomBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-RoomBookingService/pkg/logger"
)

type memoryStore struct {
	mu       sync.Mutex
	bookings []*domain.Booking
}

func (s *memoryStore) FetchBookingsForDay(_ context.Context, day time.Time) (map[domain.RoomName][]*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.RoomName][]*domain.Booking)
	for _, b := range s.bookings {
		if domain.IsSameDay(b.Day, day) {
			out[b.RoomName] = append(out[b.RoomName], b)
		}
	}
	return out, nil
}

func (s *memoryStore) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = append(s.bookings, b)
	return b, nil
}

type mutexLocker struct{ mu sync.Mutex }

func (l *mutexLocker) WithLock(ctx context.Context, _ int64, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx)
}

func newServer(t *testing.T) (*httptest.Server, *memoryStore) {
	t.Helper()
	log := logger.NewNop()
	store := &memoryStore{}

	alloc := allocator.NewAllocator(
		domain.DefaultRoomCatalog(),
		domain.DefaultMaintenanceWindows(),
		store,
		&mutexLocker{},
		log,
	)

	router := NewRouter(
		createBookingHandler.NewHandler(createBookingUC.NewUseCase(alloc, log), log),
		getAvailableSlotsHandler.NewHandler(getAvailableSlotsUC.NewUseCase(alloc, log), log),
		Options{},
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, store
}

func postBooking(t *testing.T, srv *httptest.Server, date string, people int, from, to string) (int, map[string]string) {
	t.Helper()
	body := fmt.Sprintf(`{"date":%q,"numberOfPeople":%d,"booking":{"from":%q,"to":%q}}`, date, people, from, to)

	resp, err := http.Post(srv.URL+"/booking/", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func today() string {
	return time.Now().Format(domain.DateFormat)
}

func TestPostBooking_HappyPath(t *testing.T) {
	srv, store := newServer(t)

	status, body := postBooking(t, srv, today(), 8, "07:00", "07:30")

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "INSPIRE", body["roomName"])

	require.Len(t, store.bookings, 1)
	assert.Equal(t, domain.RoomName("INSPIRE"), store.bookings[0].RoomName)
	assert.Equal(t, domain.MustTimeSlot("07:00", "07:30"), store.bookings[0].Slot)
	assert.Equal(t, 8, store.bookings[0].NumberOfPeople)
}

func TestPostBooking_ClientErrors(t *testing.T) {
	srv, store := newServer(t)

	status, body := postBooking(t, srv, today(), -2, "07:00", "07:30")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Number of people cannot be a negative number, received '-2' in a request.", body["error"])

	tomorrow := time.Now().AddDate(0, 0, 1).Format(domain.DateFormat)
	status, body = postBooking(t, srv, tomorrow, 2, "07:00", "07:30")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "Can only book rooms for today")

	assert.Empty(t, store.bookings)
}

func TestPostBooking_Maintenance(t *testing.T) {
	srv, _ := newServer(t)

	status, body := postBooking(t, srv, today(), 2, "09:00", "09:30")

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Failed to block a room between 09:00 and 09:30 due to maintenance.", body["error"])
}

func TestPostBooking_AllRoomsBooked(t *testing.T) {
	srv, _ := newServer(t)

	for _, want := range []string{"AMAZE", "BEAUTY", "INSPIRE", "STRIVE"} {
		status, body := postBooking(t, srv, today(), 2, "00:15", "04:30")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, want, body["roomName"])
	}

	status, body := postBooking(t, srv, today(), 2, "00:15", "04:30")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "No rooms are available for 2 between 00:15 and 04:30.", body["error"])
}

func TestGetAvailableSlots(t *testing.T) {
	srv, _ := newServer(t)

	status, _ := postBooking(t, srv, today(), 2, "00:00", "04:30")
	require.Equal(t, http.StatusOK, status)

	resp, err := http.Get(srv.URL + "/booking/?from=04:15&to=17:30")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body getAvailableSlotsHandler.AvailableSlotsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, []getAvailableSlotsHandler.TimeSlotResponse{
		{From: "04:30", To: "09:00"},
		{From: "09:15", To: "13:00"},
		{From: "13:15", To: "17:00"},
		{From: "17:15", To: "17:30"},
	}, body.Slots["AMAZE"])
	assert.Equal(t, []getAvailableSlotsHandler.TimeSlotResponse{
		{From: "04:15", To: "09:00"},
		{From: "09:15", To: "13:00"},
		{From: "13:15", To: "17:00"},
		{From: "17:15", To: "17:30"},
	}, body.Slots["STRIVE"])

	require.Len(t, body.Rooms, 4)
	assert.Equal(t, "AMAZE", body.Rooms[0].Name)
	assert.Equal(t, 20, body.Rooms[3].Capacity)
}
