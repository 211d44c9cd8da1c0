// Package memory - хранилище в памяти процесса. Используется в тестах и в
// режиме без БД (аналог localStorage исходного приложения). Потокобезопасно:
// условные переходы статусов перечитывают запись под мьютексом.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Freeeeeet/campus_booking/internal/model"
)

type SlotStore struct {
	mu     sync.Mutex
	slots  map[int64]*model.Slot
	nextID int64
}

func NewSlotStore() *SlotStore {
	return &SlotStore{slots: make(map[int64]*model.Slot)}
}

func (s *SlotStore) Create(_ context.Context, slot *model.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	slot.ID = s.nextID
	s.slots[slot.ID] = cloneSlot(slot)
	return nil
}

func (s *SlotStore) GetByID(_ context.Context, id int64) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		return nil, nil
	}
	return cloneSlot(slot), nil
}

func (s *SlotStore) GetByTeacherID(_ context.Context, teacherID int64) ([]*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Slot
	for _, slot := range s.slots {
		if slot.TeacherID == teacherID {
			out = append(out, cloneSlot(slot))
		}
	}
	sortSlots(out)
	return out, nil
}

func (s *SlotStore) GetByDate(_ context.Context, teacherID int64, date string) ([]*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Slot
	for _, slot := range s.slots {
		if slot.TeacherID == teacherID && slot.Date == date {
			out = append(out, cloneSlot(slot))
		}
	}
	sortSlots(out)
	return out, nil
}

func (s *SlotStore) GetAvailable(_ context.Context, teacherID int64, fromDate string) ([]*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Slot
	for _, slot := range s.slots {
		if slot.TeacherID == teacherID && slot.Status == model.SlotStatusAvailable && slot.Date >= fromDate {
			out = append(out, cloneSlot(slot))
		}
	}
	sortSlots(out)
	return out, nil
}

func (s *SlotStore) Upsert(_ context.Context, slot *model.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slot.ID == 0 {
		s.nextID++
		slot.ID = s.nextID
	} else if slot.ID > s.nextID {
		s.nextID = slot.ID
	}
	s.slots[slot.ID] = cloneSlot(slot)
	return nil
}

func (s *SlotStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots, id)
	return nil
}

func (s *SlotStore) Claim(_ context.Context, slotID, studentID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok || slot.Status != model.SlotStatusAvailable {
		return false, nil
	}
	slot.Status = model.SlotStatusBooked
	slot.BookedBy = &studentID
	return true, nil
}

func (s *SlotStore) Release(_ context.Context, slotID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok || slot.Status != model.SlotStatusBooked {
		return false, nil
	}
	slot.Status = model.SlotStatusAvailable
	slot.BookedBy = nil
	return true, nil
}

func (s *SlotStore) UpdateStatus(_ context.Context, slotID int64, status model.SlotStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slot, ok := s.slots[slotID]; ok {
		slot.Status = status
		if status != model.SlotStatusBooked {
			slot.BookedBy = nil
		}
	}
	return nil
}

// sortSlots упорядочивает по (date, start_time), затем по ID для стабильности.
func sortSlots(slots []*model.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		if slots[i].StartTime != slots[j].StartTime {
			return slots[i].StartTime < slots[j].StartTime
		}
		return slots[i].ID < slots[j].ID
	})
}

func cloneSlot(slot *model.Slot) *model.Slot {
	c := *slot
	if slot.BookedBy != nil {
		v := *slot.BookedBy
		c.BookedBy = &v
	}
	if slot.ParentSlotID != nil {
		v := *slot.ParentSlotID
		c.ParentSlotID = &v
	}
	if slot.SeriesID != nil {
		v := *slot.SeriesID
		c.SeriesID = &v
	}
	return &c
}
