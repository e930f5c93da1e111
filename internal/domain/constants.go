package domain

// Bounds of the bookable day. 23:59 is the last representable minute,
// so the full day is [00:00, 23:59).
const (
	DayStart = "00:00"
	DayEnd   = "23:59"
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Business validation constants
const (
	MinNumberOfPeople = 1
)

// DefaultRooms is the room catalog used when the configuration has none
var DefaultRooms = []Room{
	{Name: "AMAZE", Capacity: 3},
	{Name: "BEAUTY", Capacity: 7},
	{Name: "INSPIRE", Capacity: 12},
	{Name: "STRIVE", Capacity: 20},
}

// FullDay returns the slot covering the whole bookable day
func FullDay() TimeSlot {
	return MustTimeSlot(DayStart, DayEnd)
}

// DefaultMaintenanceWindows returns the blackout windows used when the configuration has none
func DefaultMaintenanceWindows() []TimeSlot {
	return []TimeSlot{
		MustTimeSlot("09:00", "09:15"),
		MustTimeSlot("13:00", "13:15"),
		MustTimeSlot("17:00", "17:15"),
	}
}
