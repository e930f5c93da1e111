package get_available_slots

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RoomBookingService/internal/domain"
)

type fakeAllocator struct {
	rooms  []domain.RoomSlots
	err    error
	bounds *domain.TimeSlot
	calls  int
}

func (f *fakeAllocator) Availability(_ context.Context, bounds *domain.TimeSlot) ([]domain.RoomSlots, error) {
	f.calls++
	f.bounds = bounds
	return f.rooms, f.err
}

type testLogger struct{}

func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}

func TestExecute_Bounds(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want *domain.TimeSlot
	}{
		{name: "no bounds", req: Request{}, want: nil},
		{name: "both bounds", req: Request{From: "04:15", To: "17:30"}, want: slotPtr("04:15", "17:30")},
		{name: "only from", req: Request{From: "12:00"}, want: slotPtr("12:00", domain.DayEnd)},
		{name: "only to", req: Request{To: "12:00"}, want: slotPtr(domain.DayStart, "12:00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc := &fakeAllocator{rooms: []domain.RoomSlots{{Room: domain.Room{Name: "AMAZE", Capacity: 3}}}}
			uc := NewUseCase(alloc, testLogger{})

			resp, err := uc.Execute(context.Background(), &tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, alloc.bounds)
			assert.Len(t, resp.Rooms, 1)
		})
	}
}

func TestExecute_InvalidRange(t *testing.T) {
	alloc := &fakeAllocator{}
	uc := NewUseCase(alloc, testLogger{})

	_, err := uc.Execute(context.Background(), &Request{From: "18:00", To: "10:00"})
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Zero(t, alloc.calls)
}

func TestExecute_AllocatorError(t *testing.T) {
	uc := NewUseCase(&fakeAllocator{err: errors.New("lock timeout")}, testLogger{})

	_, err := uc.Execute(context.Background(), &Request{})
	assert.ErrorIs(t, err, ErrInternal)
}

func slotPtr(from, to string) *domain.TimeSlot {
	s := domain.MustTimeSlot(from, to)
	return &s
}
