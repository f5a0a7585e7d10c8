package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/coach_scheduler/internal/model"
)

type EventType string

const (
	EventSlotCreated      EventType = "slot.created"
	EventSlotBooked       EventType = "slot.booked"
	EventFeedbackRecorded EventType = "slot.feedback_recorded"
)

// SlotEvent событие после успешного перехода слота
type SlotEvent struct {
	Type       EventType   `json:"type"`
	Slot       *model.Slot `json:"slot"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// EventPublisher получатель событий. Ошибка публикации не отменяет переход.
type EventPublisher interface {
	Publish(ctx context.Context, event SlotEvent) error
}

// NopPublisher ничего не публикует
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, SlotEvent) error { return nil }
