package freeslots

import (
	"sort"

	"github.com/m04kA/SMC-RoomBookingService/internal/domain"
)

// Store хранит для каждой комнаты отсортированный по From список свободных интервалов.
// Интервалы не пересекаются; соседние интервалы могут касаться друг друга.
//
// Store не потокобезопасен: все вызовы должны выполняться внутри
// критической секции вызывающей стороны (см. allocator.Allocator).
type Store struct {
	rooms       []domain.RoomName
	maintenance []domain.TimeSlot
	free        map[domain.RoomName][]domain.TimeSlot
}

// New создает хранилище: весь день для каждой комнаты минус окна обслуживания
func New(rooms []domain.RoomName, maintenance []domain.TimeSlot) *Store {
	s := &Store{
		rooms:       append([]domain.RoomName(nil), rooms...),
		maintenance: append([]domain.TimeSlot(nil), maintenance...),
	}
	s.Reset()
	return s
}

// Reset возвращает все комнаты в начальное состояние (весь день минус обслуживание)
func (s *Store) Reset() {
	s.free = make(map[domain.RoomName][]domain.TimeSlot, len(s.rooms))
	for _, room := range s.rooms {
		s.free[room] = []domain.TimeSlot{domain.FullDay()}
		for _, window := range s.maintenance {
			s.TryReserve(room, window)
		}
	}
}

// TryReserve занимает slot в комнате, если он целиком помещается в один свободный интервал.
// Свободный интервал удаляется, ненулевые остатки слева и справа возвращаются на место.
// false означает "в этой комнате не помещается" и не является ошибкой.
func (s *Store) TryReserve(room domain.RoomName, slot domain.TimeSlot) bool {
	slots, ok := s.free[room]
	if !ok {
		return false
	}

	for i, freeSlot := range slots {
		if !freeSlot.Contains(slot) {
			continue
		}

		remainders := make([]domain.TimeSlot, 0, 2)
		if freeSlot.From != slot.From {
			remainders = append(remainders, domain.TimeSlot{From: freeSlot.From, To: slot.From})
		}
		if slot.To != freeSlot.To {
			remainders = append(remainders, domain.TimeSlot{From: slot.To, To: freeSlot.To})
		}

		// Остатки лежат внутри удаленного интервала, поэтому порядок сохраняется без пересортировки
		updated := make([]domain.TimeSlot, 0, len(slots)+1)
		updated = append(updated, slots[:i]...)
		updated = append(updated, remainders...)
		updated = append(updated, slots[i+1:]...)
		s.free[room] = updated
		return true
	}

	return false
}

// Snapshot возвращает копию свободных интервалов комнаты.
// Если bounds задан, интервалы обрезаются по [bounds.From, bounds.To];
// интервалы нулевой ширины отбрасываются.
func (s *Store) Snapshot(room domain.RoomName, bounds *domain.TimeSlot) []domain.TimeSlot {
	slots := s.free[room]
	if bounds == nil {
		out := make([]domain.TimeSlot, len(slots))
		copy(out, slots)
		return out
	}

	lo, hi := bounds.From, bounds.To
	out := make([]domain.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		// Целиком до диапазона
		if slot.To.IsBeforeOrEqual(lo) {
			continue
		}
		// Целиком после диапазона: список отсортирован, дальше смотреть незачем
		if slot.From.IsAfterOrEqual(hi) {
			break
		}

		from, to := slot.From, slot.To
		if from.IsBefore(lo) {
			from = lo
		}
		if to.IsAfter(hi) {
			to = hi
		}
		if from == to {
			continue
		}
		out = append(out, domain.TimeSlot{From: from, To: to})
	}

	return out
}

// Restore заменяет свободные интервалы комнаты ранее снятым Snapshot(room, nil).
// Используется для отката разбиения, если бронирование не удалось сохранить.
func (s *Store) Restore(room domain.RoomName, slots []domain.TimeSlot) {
	if _, ok := s.free[room]; !ok {
		return
	}
	restored := make([]domain.TimeSlot, len(slots))
	copy(restored, slots)
	sort.SliceStable(restored, func(i, j int) bool {
		return restored[i].Less(restored[j])
	})
	s.free[room] = restored
}

// Rooms возвращает комнаты хранилища в исходном порядке
func (s *Store) Rooms() []domain.RoomName {
	out := make([]domain.RoomName, len(s.rooms))
	copy(out, s.rooms)
	return out
}
