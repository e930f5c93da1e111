package domain

import (
	"time"

	"github.com/google/uuid"
)

// Booking is an accepted reservation of a room for a slot of one day
type Booking struct {
	ID             uuid.UUID
	RoomName       RoomName
	Day            time.Time // date only, time part is zero
	Slot           TimeSlot
	NumberOfPeople int
	CreatedAt      time.Time
}

// NewBooking creates a booking with a fresh ID for the given day
func NewBooking(room RoomName, day time.Time, slot TimeSlot, numberOfPeople int) *Booking {
	return &Booking{
		ID:             uuid.New(),
		RoomName:       room,
		Day:            DateOnly(day),
		Slot:           slot,
		NumberOfPeople: numberOfPeople,
	}
}

// RoomSlots is the free time of one room
type RoomSlots struct {
	Room  Room
	Slots []TimeSlot
}

// DateOnly drops the clock part of t, keeping its location
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsSameDay reports whether both times fall on the same calendar date
func IsSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
