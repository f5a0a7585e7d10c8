// Package memory хранит слоты и пользователей в памяти процесса.
package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Freeeeeet/coach_scheduler/internal/model"
)

// slotEntry слот со своим замком: изменения одного слота не блокируют другие
type slotEntry struct {
	mu   sync.Mutex
	slot *model.Slot
}

// SlotStore хранилище слотов в памяти
type SlotStore struct {
	mu     sync.RWMutex // защищает только карту, не сами слоты
	slots  map[int64]*slotEntry
	nextID atomic.Int64
}

func NewSlotStore() *SlotStore {
	return &SlotStore{slots: make(map[int64]*slotEntry)}
}

// Create сохраняет слот и присваивает ему ID
func (s *SlotStore) Create(_ context.Context, slot *model.Slot) error {
	slot.ID = s.nextID.Add(1)
	entry := &slotEntry{slot: slot.Clone()}

	s.mu.Lock()
	s.slots[slot.ID] = entry
	s.mu.Unlock()

	return nil
}

// GetByID возвращает копию слота или nil
func (s *SlotStore) GetByID(_ context.Context, id int64) (*model.Slot, error) {
	entry := s.entry(id)
	if entry == nil {
		return nil, nil
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.slot.Clone(), nil
}

// Book бронирует слот, только если он ещё свободен
func (s *SlotStore) Book(_ context.Context, slotID, studentID int64, at time.Time) (*model.Slot, error) {
	entry := s.entry(slotID)
	if entry == nil {
		return nil, nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.slot.IsBooked {
		return nil, nil
	}

	entry.slot.IsBooked = true
	entry.slot.StudentID = &studentID
	entry.slot.UpdatedAt = at

	return entry.slot.Clone(), nil
}

// UpdateFeedback перезаписывает оценку и заметки забронированного слота
func (s *SlotStore) UpdateFeedback(_ context.Context, slotID int64, score int, notes *string, at time.Time) (*model.Slot, error) {
	entry := s.entry(slotID)
	if entry == nil {
		return nil, nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !entry.slot.IsBooked {
		return nil, nil
	}

	entry.slot.SatisfactionScore = &score
	if notes != nil {
		n := *notes
		entry.slot.Notes = &n
	} else {
		entry.slot.Notes = nil
	}
	entry.slot.UpdatedAt = at

	return entry.slot.Clone(), nil
}

// Find возвращает снимок слотов, подходящих под выборку
func (s *SlotStore) Find(_ context.Context, q model.SlotQuery) ([]*model.Slot, error) {
	s.mu.RLock()
	entries := make([]*slotEntry, 0, len(s.slots))
	for _, e := range s.slots {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	result := make([]*model.Slot, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if q.Match(e.slot) {
			result = append(result, e.slot.Clone())
		}
		e.mu.Unlock()
	}

	model.SortSlots(result, q.Order)
	return result, nil
}

// Ping всегда успешен
func (s *SlotStore) Ping(context.Context) error {
	return nil
}

func (s *SlotStore) entry(id int64) *slotEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots[id]
}
