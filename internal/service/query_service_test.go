package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/coach_scheduler/internal/model"
)

func TestAvailableSlots(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()

	late := f.create(t, sessionStart.Add(48*time.Hour))
	early := f.create(t, sessionStart)
	booked := f.create(t, sessionStart.Add(24*time.Hour))
	f.book(t, booked.ID)

	got, err := f.query.AvailableSlots(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, early.ID, late.ID)

	// Слот, который уже закончился, не доступен
	f.clock.Set(early.EndTime.Add(time.Second))
	got, _ = f.query.AvailableSlots(ctx)
	assertIDs(t, got, late.ID)

	// start_time == now тоже не доступен
	f.clock.Set(late.StartTime)
	got, _ = f.query.AvailableSlots(ctx)
	assertIDs(t, got)
	if got == nil {
		t.Error("empty result must be a non-nil slice")
	}
}

func TestUpcomingForCoach(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()

	second := f.create(t, sessionStart.Add(24*time.Hour))
	first := f.create(t, sessionStart)
	f.book(t, second.ID)
	f.create(t, sessionStart.Add(-48*time.Hour))
	if _, err := f.svc.Create(ctx, otherCoach, sessionStart); err != nil {
		t.Fatal(err)
	}

	got, err := f.query.UpcomingForCoach(ctx, coachID)
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, first.ID, second.ID)

	if _, err := f.query.UpcomingForCoach(ctx, studentID); !errors.Is(err, ErrInvalidCoach) {
		t.Errorf("student id: err = %v", err)
	}
	if _, err := f.query.UpcomingForCoach(ctx, 999); !errors.Is(err, ErrInvalidCoach) {
		t.Errorf("unknown id: err = %v", err)
	}
}

func TestPastSessionsForCoach(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()

	older := f.create(t, sessionStart)
	newer := f.create(t, sessionStart.Add(24*time.Hour))
	unbooked := f.create(t, sessionStart.Add(30*time.Hour))
	running := f.create(t, sessionStart.Add(72*time.Hour))
	f.book(t, older.ID)
	f.book(t, newer.ID)
	f.book(t, running.ID)
	_ = unbooked

	f.clock.Set(running.StartTime.Add(time.Hour))

	got, err := f.query.PastSessionsForCoach(ctx, coachID)
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, newer.ID, older.ID)

	if _, err := f.query.PastSessionsForCoach(ctx, 0); !errors.Is(err, ErrInvalidCoach) {
		t.Errorf("zero id: err = %v", err)
	}
}

func TestByID(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()
	slot := f.create(t, sessionStart)

	got, err := f.query.ByID(ctx, slot.ID)
	if err != nil || got.ID != slot.ID {
		t.Fatalf("ByID = %+v, %v", got, err)
	}

	for _, id := range []int64{0, -1, 999} {
		if _, err := f.query.ByID(ctx, id); !errors.Is(err, ErrSlotNotFound) {
			t.Errorf("ByID(%d): err = %v", id, err)
		}
	}
}

func TestQueryResultsAreSnapshots(t *testing.T) {
	f := newFixture(t, Policy{})
	ctx := context.Background()
	slot := f.create(t, sessionStart)

	got, _ := f.query.AllSlots(ctx)
	got[0].IsBooked = true

	again, _ := f.query.AllSlots(ctx)
	if again[0].IsBooked {
		t.Error("mutating a query result changed the store")
	}
	if _, err := f.svc.Book(ctx, slot.ID, studentID); err != nil {
		t.Fatalf("Book: %v", err)
	}
}

func assertIDs(t *testing.T, slots []*model.Slot, want ...int64) {
	t.Helper()
	if len(slots) != len(want) {
		t.Fatalf("got %d slots, want %d", len(slots), len(want))
	}
	for i, s := range slots {
		if s.ID != want[i] {
			t.Errorf("slot %d: id %d, want %d", i, s.ID, want[i])
		}
	}
}
