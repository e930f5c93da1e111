package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrEmptyCatalog is returned when no rooms are configured
	ErrEmptyCatalog = errors.New("domain: room catalog is empty")

	// ErrInvalidRoomName is returned for rooms with an empty or blank name
	ErrInvalidRoomName = errors.New("domain: invalid room name")

	// ErrDuplicateRoom is returned when two rooms share a name
	ErrDuplicateRoom = errors.New("domain: duplicate room name")

	// ErrInvalidCapacity is returned for rooms with non-positive capacity
	ErrInvalidCapacity = errors.New("domain: room capacity must be positive")
)

// RoomName identifies a room
type RoomName string

// Room is a bookable room with a fixed maximum occupancy
type Room struct {
	Name     RoomName
	Capacity int
}

// RoomCatalog is the static set of rooms ordered by ascending capacity.
// Rooms with equal capacity keep their declaration order.
type RoomCatalog struct {
	rooms []Room
}

// NewRoomCatalog validates rooms and fixes the search order
func NewRoomCatalog(rooms []Room) (*RoomCatalog, error) {
	if len(rooms) == 0 {
		return nil, ErrEmptyCatalog
	}

	seen := make(map[RoomName]struct{}, len(rooms))
	sorted := make([]Room, 0, len(rooms))
	for _, room := range rooms {
		if strings.TrimSpace(string(room.Name)) == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRoomName, room.Name)
		}
		if room.Capacity <= 0 {
			return nil, fmt.Errorf("%w: room %s has capacity %d", ErrInvalidCapacity, room.Name, room.Capacity)
		}
		if _, ok := seen[room.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoom, room.Name)
		}
		seen[room.Name] = struct{}{}
		sorted = append(sorted, room)
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Capacity < sorted[j].Capacity
	})

	return &RoomCatalog{rooms: sorted}, nil
}

// DefaultRoomCatalog returns the catalog built from DefaultRooms
func DefaultRoomCatalog() *RoomCatalog {
	catalog, err := NewRoomCatalog(DefaultRooms)
	if err != nil {
		panic(err)
	}
	return catalog
}

// Rooms returns all rooms in search order
func (c *RoomCatalog) Rooms() []Room {
	out := make([]Room, len(c.rooms))
	copy(out, c.rooms)
	return out
}

// Names returns room names in search order
func (c *RoomCatalog) Names() []RoomName {
	names := make([]RoomName, len(c.rooms))
	for i, room := range c.rooms {
		names[i] = room.Name
	}
	return names
}

// Get looks a room up by name
func (c *RoomCatalog) Get(name RoomName) (Room, bool) {
	for _, room := range c.rooms {
		if room.Name == name {
			return room, true
		}
	}
	return Room{}, false
}

// SufficientRooms returns the rooms that fit numberOfPeople, smallest first
func (c *RoomCatalog) SufficientRooms(numberOfPeople int) []Room {
	rooms := make([]Room, 0, len(c.rooms))
	for _, room := range c.rooms {
		if room.Capacity >= numberOfPeople {
			rooms = append(rooms, room)
		}
	}
	return rooms
}
