package service

import (
	"context"
	"errors"
	"time"

	"github.com/Freeeeeet/coach_scheduler/internal/clock"
	"github.com/Freeeeeet/coach_scheduler/internal/metrics"
	"github.com/Freeeeeet/coach_scheduler/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/Freeeeeet/coach_scheduler/internal/service"

// Policy дополнительные проверки движка. Нулевое значение повторяет исходное поведение.
type Policy struct {
	// RejectPastBooking запрещает бронировать уже начавшийся слот
	RejectPastBooking bool
	// RequireFeedbackOwner требует coach_id в отзыве
	RequireFeedbackOwner bool
	// RequireElapsedSession разрешает отзыв только после окончания слота
	RequireElapsedSession bool
}

// SlotService движок жизненного цикла слота: создание, бронирование, отзыв.
//
// Бронирование выполняется одним compare-and-set в хранилище (is_booked = false),
// а не чтением с последующей записью, поэтому из N параллельных попыток
// побеждает ровно одна.
type SlotService struct {
	slots  SlotStore
	users  UserDirectory
	clock  clock.Clock
	events EventPublisher
	policy Policy
	logger *zap.Logger
	tracer trace.Tracer
}

func NewSlotService(
	slots SlotStore,
	users UserDirectory,
	clk clock.Clock,
	events EventPublisher,
	policy Policy,
	logger *zap.Logger,
) *SlotService {
	if events == nil {
		events = NopPublisher{}
	}
	return &SlotService{
		slots:  slots,
		users:  users,
		clock:  clk,
		events: events,
		policy: policy,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
}

// Create публикует новый слот коуча длительностью model.SlotDuration
func (s *SlotService) Create(ctx context.Context, coachID int64, startTime time.Time) (slot *model.Slot, err error) {
	ctx, span := s.tracer.Start(ctx, "SlotService.Create", trace.WithAttributes(
		attribute.Int64("coach_id", coachID),
	))
	defer func() { endSpan(span, err) }()

	if startTime.IsZero() {
		return nil, ErrInvalidTime
	}

	if err := s.requireRole(ctx, coachID, model.RoleCoach, ErrInvalidCoach); err != nil {
		return nil, err
	}

	slot = model.NewSlot(coachID, startTime, s.clock.Now())

	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, StoreError(err)
	}

	metrics.SlotsCreated.Inc()
	s.logger.Info("Slot created",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("coach_id", coachID),
		zap.Time("start_time", slot.StartTime),
	)
	s.publish(ctx, EventSlotCreated, slot)

	return slot, nil
}

// Book бронирует слот для студента. Повторное бронирование невозможно.
func (s *SlotService) Book(ctx context.Context, slotID, studentID int64) (slot *model.Slot, err error) {
	ctx, span := s.tracer.Start(ctx, "SlotService.Book", trace.WithAttributes(
		attribute.Int64("slot_id", slotID),
		attribute.Int64("student_id", studentID),
	))
	defer func() {
		metrics.SlotBookings.WithLabelValues(resultLabel(err)).Inc()
		endSpan(span, err)
	}()

	current, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, StoreError(err)
	}
	if current == nil {
		return nil, ErrSlotNotFound
	}

	// Быстрый отказ; окончательное решение принимает compare-and-set ниже
	if current.IsBooked {
		return nil, ErrAlreadyBooked
	}

	if err := s.requireRole(ctx, studentID, model.RoleStudent, ErrInvalidStudent); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if s.policy.RejectPastBooking && !current.StartTime.After(now) {
		return nil, ErrSlotInPast
	}

	slot, err = s.slots.Book(ctx, slotID, studentID, now)
	if err != nil {
		return nil, StoreError(err)
	}
	if slot == nil {
		// Проиграли гонку, либо слот удалили извне
		return nil, s.explainMiss(ctx, slotID, ErrAlreadyBooked)
	}

	s.logger.Info("Slot booked",
		zap.Int64("slot_id", slotID),
		zap.Int64("student_id", studentID),
		zap.Int64("coach_id", slot.CoachID),
	)
	s.publish(ctx, EventSlotBooked, slot)

	return slot, nil
}

// RecordFeedback записывает оценку и заметки коуча по забронированному слоту.
// coachID может быть 0, тогда владелец не проверяется (если политика не требует).
func (s *SlotService) RecordFeedback(ctx context.Context, slotID, coachID int64, score int, notes *string) (slot *model.Slot, err error) {
	ctx, span := s.tracer.Start(ctx, "SlotService.RecordFeedback", trace.WithAttributes(
		attribute.Int64("slot_id", slotID),
		attribute.Int64("coach_id", coachID),
		attribute.Int("satisfaction_score", score),
	))
	defer func() {
		metrics.SlotFeedback.WithLabelValues(resultLabel(err)).Inc()
		endSpan(span, err)
	}()

	current, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, StoreError(err)
	}
	if current == nil {
		return nil, ErrSlotNotFound
	}

	if !current.IsBooked {
		return nil, ErrSlotNotBooked
	}

	if !model.ValidScore(score) {
		return nil, ErrInvalidScore
	}

	if coachID == 0 {
		if s.policy.RequireFeedbackOwner {
			return nil, ErrNotSlotOwner
		}
	} else {
		if err := s.requireRole(ctx, coachID, model.RoleCoach, ErrInvalidCoach); err != nil {
			return nil, err
		}
		if coachID != current.CoachID {
			return nil, ErrNotSlotOwner
		}
	}

	now := s.clock.Now()
	if s.policy.RequireElapsedSession && !current.HasElapsed(now) {
		return nil, ErrSessionNotElapsed
	}

	slot, err = s.slots.UpdateFeedback(ctx, slotID, score, notes, now)
	if err != nil {
		return nil, StoreError(err)
	}
	if slot == nil {
		return nil, s.explainMiss(ctx, slotID, ErrSlotNotBooked)
	}

	s.logger.Info("Feedback recorded",
		zap.Int64("slot_id", slotID),
		zap.Int64("coach_id", slot.CoachID),
		zap.Int("satisfaction_score", score),
	)
	s.publish(ctx, EventFeedbackRecorded, slot)

	return slot, nil
}

// requireRole проверяет что id принадлежит пользователю с ролью role
func (s *SlotService) requireRole(ctx context.Context, id int64, role model.Role, invalid *Error) error {
	if id <= 0 {
		return invalid
	}
	got, err := s.users.ResolveRole(ctx, id)
	if err != nil {
		return StoreError(err)
	}
	if got != role {
		return invalid
	}
	return nil
}

// explainMiss различает пропавший слот и невыполненное условие compare-and-set
func (s *SlotService) explainMiss(ctx context.Context, slotID int64, conflict *Error) error {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return StoreError(err)
	}
	if slot == nil {
		return ErrSlotNotFound
	}
	return conflict
}

func (s *SlotService) publish(ctx context.Context, eventType EventType, slot *model.Slot) {
	event := SlotEvent{
		Type:       eventType,
		Slot:       slot.Clone(),
		OccurredAt: s.clock.Now(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish slot event",
			zap.String("type", string(eventType)),
			zap.Int64("slot_id", slot.ID),
			zap.Error(err),
		)
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, ErrAlreadyBooked):
		return metrics.ResultAlreadyBooked
	case KindOf(err) == KindStore:
		return metrics.ResultError
	default:
		return metrics.ResultRejected
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
