// Package storetest общие проверки для реализаций хранилища слотов.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/coach_scheduler/internal/model"
	"github.com/Freeeeeet/coach_scheduler/internal/service"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// RunSlotStore прогоняет набор проверок по хранилищу, созданному newStore
func RunSlotStore(t *testing.T, newStore func(t *testing.T) service.SlotStore) {
	t.Run("CreateAssignsIDs", func(t *testing.T) {
		store := newStore(t)
		a := create(t, store, 1, base)
		b := create(t, store, 1, base.Add(3*time.Hour))
		if a.ID <= 0 || b.ID <= a.ID {
			t.Fatalf("ids not increasing: %d, %d", a.ID, b.ID)
		}
	})

	t.Run("GetByIDMissing", func(t *testing.T) {
		store := newStore(t)
		slot, err := store.GetByID(context.Background(), 999)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if slot != nil {
			t.Fatalf("expected nil slot, got %+v", slot)
		}
	})

	t.Run("GetByIDRoundTrip", func(t *testing.T) {
		store := newStore(t)
		created := create(t, store, 7, base)

		got, err := store.GetByID(context.Background(), created.ID)
		if err != nil || got == nil {
			t.Fatalf("GetByID: %v, %v", got, err)
		}
		if got.CoachID != 7 || !got.StartTime.Equal(base) || !got.EndTime.Equal(base.Add(model.SlotDuration)) {
			t.Errorf("unexpected slot %+v", got)
		}
		if got.IsBooked || got.StudentID != nil || got.SatisfactionScore != nil || got.Notes != nil {
			t.Errorf("new slot must be unbooked and empty: %+v", got)
		}
	})

	t.Run("CreateMatchesStored", func(t *testing.T) {
		store := newStore(t)
		start := base.Add(123456789 * time.Nanosecond)
		slot := &model.Slot{
			CoachID:   3,
			StartTime: start,
			EndTime:   start.Add(model.SlotDuration),
			CreatedAt: base.Add(987654321 * time.Nanosecond),
			UpdatedAt: base.Add(987654321 * time.Nanosecond),
		}
		if err := store.Create(context.Background(), slot); err != nil {
			t.Fatalf("Create: %v", err)
		}

		got, err := store.GetByID(context.Background(), slot.ID)
		if err != nil || got == nil {
			t.Fatalf("GetByID: %v, %v", got, err)
		}
		if !got.StartTime.Equal(slot.StartTime) || !got.EndTime.Equal(slot.EndTime) {
			t.Errorf("window differs: created %s..%s, stored %s..%s",
				slot.StartTime, slot.EndTime, got.StartTime, got.EndTime)
		}
		if !got.CreatedAt.Equal(slot.CreatedAt) || !got.UpdatedAt.Equal(slot.UpdatedAt) {
			t.Errorf("timestamps differ: created %s/%s, stored %s/%s",
				slot.CreatedAt, slot.UpdatedAt, got.CreatedAt, got.UpdatedAt)
		}
	})

	t.Run("FarFutureStart", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		start := time.Date(2300, 1, 1, 9, 0, 0, 0, time.UTC)
		near := create(t, store, 1, base.Add(time.Hour))
		far := create(t, store, 1, start)

		got, err := store.GetByID(ctx, far.ID)
		if err != nil || got == nil {
			t.Fatalf("GetByID: %v, %v", got, err)
		}
		if !got.StartTime.Equal(start) || !got.EndTime.Equal(start.Add(model.SlotDuration)) {
			t.Errorf("far slot window changed: %s..%s", got.StartTime, got.EndTime)
		}

		available, err := store.Find(ctx, model.AvailableSlotsQuery(base))
		if err != nil {
			t.Fatal(err)
		}
		assertIDs(t, "available", available, near.ID, far.ID)
	})

	t.Run("BookOnce", func(t *testing.T) {
		store := newStore(t)
		slot := create(t, store, 1, base)
		ctx := context.Background()

		booked, err := store.Book(ctx, slot.ID, 2, base)
		if err != nil || booked == nil {
			t.Fatalf("first Book: %v, %v", booked, err)
		}
		if !booked.IsBooked || booked.StudentID == nil || *booked.StudentID != 2 {
			t.Errorf("unexpected booked slot %+v", booked)
		}

		again, err := store.Book(ctx, slot.ID, 3, base)
		if err != nil {
			t.Fatalf("second Book: %v", err)
		}
		if again != nil {
			t.Fatalf("second Book must miss, got %+v", again)
		}

		got, _ := store.GetByID(ctx, slot.ID)
		if got.StudentID == nil || *got.StudentID != 2 {
			t.Errorf("student changed after second Book: %+v", got)
		}
	})

	t.Run("BookMissing", func(t *testing.T) {
		store := newStore(t)
		got, err := store.Book(context.Background(), 42, 2, base)
		if err != nil || got != nil {
			t.Fatalf("Book missing: %v, %v", got, err)
		}
	})

	t.Run("ConcurrentBookSingleWinner", func(t *testing.T) {
		store := newStore(t)
		slot := create(t, store, 1, base)

		const attempts = 16
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(student int64) {
				defer wg.Done()
				got, err := store.Book(context.Background(), slot.ID, student, base)
				if err != nil {
					t.Errorf("Book: %v", err)
					return
				}
				if got != nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}(int64(100 + i))
		}
		wg.Wait()

		if wins != 1 {
			t.Fatalf("expected exactly one winner, got %d", wins)
		}
	})

	t.Run("UpdateFeedbackRequiresBooking", func(t *testing.T) {
		store := newStore(t)
		slot := create(t, store, 1, base)
		ctx := context.Background()

		got, err := store.UpdateFeedback(ctx, slot.ID, 4, nil, base)
		if err != nil || got != nil {
			t.Fatalf("feedback on unbooked slot: %v, %v", got, err)
		}
	})

	t.Run("UpdateFeedbackOverwrites", func(t *testing.T) {
		store := newStore(t)
		slot := create(t, store, 1, base)
		ctx := context.Background()
		if _, err := store.Book(ctx, slot.ID, 2, base); err != nil {
			t.Fatal(err)
		}

		notes := "great"
		first, err := store.UpdateFeedback(ctx, slot.ID, 5, &notes, base)
		if err != nil || first == nil {
			t.Fatalf("UpdateFeedback: %v, %v", first, err)
		}
		if *first.SatisfactionScore != 5 || first.Notes == nil || *first.Notes != "great" {
			t.Errorf("unexpected feedback %+v", first)
		}

		second, err := store.UpdateFeedback(ctx, slot.ID, 2, nil, base.Add(time.Hour))
		if err != nil || second == nil {
			t.Fatalf("second UpdateFeedback: %v, %v", second, err)
		}
		if *second.SatisfactionScore != 2 || second.Notes != nil {
			t.Errorf("feedback not overwritten: %+v", second)
		}
		if !second.IsBooked || *second.StudentID != 2 {
			t.Errorf("booking changed by feedback: %+v", second)
		}
	})

	t.Run("FindFiltersAndOrders", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		late := create(t, store, 1, base.Add(48*time.Hour))
		early := create(t, store, 1, base.Add(24*time.Hour))
		other := create(t, store, 2, base.Add(30*time.Hour))
		past := create(t, store, 1, base.Add(-24*time.Hour))
		for _, id := range []int64{other.ID, past.ID} {
			if _, err := store.Book(ctx, id, 9, base); err != nil {
				t.Fatal(err)
			}
		}

		available, err := store.Find(ctx, model.AvailableSlotsQuery(base))
		if err != nil {
			t.Fatal(err)
		}
		assertIDs(t, "available", available, early.ID, late.ID)

		upcoming, err := store.Find(ctx, model.UpcomingForCoachQuery(1, base))
		if err != nil {
			t.Fatal(err)
		}
		assertIDs(t, "upcoming", upcoming, early.ID, late.ID)

		pastSessions, err := store.Find(ctx, model.PastSessionsForCoachQuery(1, base))
		if err != nil {
			t.Fatal(err)
		}
		assertIDs(t, "past", pastSessions, past.ID)

		all, err := store.Find(ctx, model.AllSlotsQuery())
		if err != nil {
			t.Fatal(err)
		}
		assertIDs(t, "all", all, late.ID, early.ID, other.ID, past.ID)
	})
}

func create(t *testing.T, store service.SlotStore, coachID int64, start time.Time) *model.Slot {
	t.Helper()
	slot := model.NewSlot(coachID, start, base)
	if err := store.Create(context.Background(), slot); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return slot
}

func assertIDs(t *testing.T, name string, slots []*model.Slot, want ...int64) {
	t.Helper()
	if len(slots) != len(want) {
		t.Fatalf("%s: got %d slots, want %d", name, len(slots), len(want))
	}
	for i, s := range slots {
		if s.ID != want[i] {
			t.Errorf("%s[%d]: got id %d, want %d", name, i, s.ID, want[i])
		}
	}
}
