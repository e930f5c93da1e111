package domain

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RoomBookingService/pkg/types"
)

// ErrInvalidTimeSlot is returned when a slot does not satisfy From < To
var ErrInvalidTimeSlot = errors.New("domain: invalid time slot")

// TimeSlot is a half-open range [From, To) of a single day.
// Build it with NewTimeSlot; values are never mutated after construction.
type TimeSlot struct {
	From types.TimeString `json:"from"`
	To   types.TimeString `json:"to"`
}

// NewTimeSlot validates both ends and the From < To invariant
func NewTimeSlot(from, to types.TimeString) (TimeSlot, error) {
	if err := from.Validate(); err != nil {
		return TimeSlot{}, fmt.Errorf("%w: from: %v", ErrInvalidTimeSlot, err)
	}
	if err := to.Validate(); err != nil {
		return TimeSlot{}, fmt.Errorf("%w: to: %v", ErrInvalidTimeSlot, err)
	}
	if !from.IsBefore(to) {
		return TimeSlot{}, fmt.Errorf("%w: %s is not before %s", ErrInvalidTimeSlot, from, to)
	}
	return TimeSlot{From: from, To: to}, nil
}

// MustTimeSlot is NewTimeSlot for constants and tests. Panics on bad input.
func MustTimeSlot(from, to string) TimeSlot {
	slot, err := NewTimeSlot(types.MustTimeString(from), types.MustTimeString(to))
	if err != nil {
		panic(err)
	}
	return slot
}

// Contains returns true if other lies wholly inside s
func (s TimeSlot) Contains(other TimeSlot) bool {
	return s.From.IsBeforeOrEqual(other.From) && s.To.IsAfterOrEqual(other.To)
}

// TouchesInclusive reports whether either end of other falls inside [s.From, s.To]
// with both bounds inclusive. Used for the maintenance check, where a booking
// that only touches a window edge is still rejected.
func (s TimeSlot) TouchesInclusive(other TimeSlot) bool {
	fromInside := other.From.IsAfterOrEqual(s.From) && other.From.IsBeforeOrEqual(s.To)
	toInside := other.To.IsAfterOrEqual(s.From) && other.To.IsBeforeOrEqual(s.To)
	return fromInside || toInside
}

// Less orders slots by (From, To)
func (s TimeSlot) Less(other TimeSlot) bool {
	if s.From != other.From {
		return s.From.IsBefore(other.From)
	}
	return s.To.IsBefore(other.To)
}

func (s TimeSlot) String() string {
	return fmt.Sprintf("%s-%s", s.From, s.To)
}
