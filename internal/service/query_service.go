package service

import (
	"context"

	"github.com/Freeeeeet/coach_scheduler/internal/clock"
	"github.com/Freeeeeet/coach_scheduler/internal/model"
)

// QueryService проекции только для чтения поверх хранилища слотов
type QueryService struct {
	slots SlotStore
	users UserDirectory
	clock clock.Clock
}

func NewQueryService(slots SlotStore, users UserDirectory, clk clock.Clock) *QueryService {
	return &QueryService{
		slots: slots,
		users: users,
		clock: clk,
	}
}

// AvailableSlots свободные слоты, которые ещё не начались, по возрастанию start_time
func (s *QueryService) AvailableSlots(ctx context.Context) ([]*model.Slot, error) {
	return s.find(ctx, model.AvailableSlotsQuery(s.clock.Now()))
}

// UpcomingForCoach будущие слоты коуча по возрастанию start_time
func (s *QueryService) UpcomingForCoach(ctx context.Context, coachID int64) ([]*model.Slot, error) {
	if err := s.requireCoach(ctx, coachID); err != nil {
		return nil, err
	}
	return s.find(ctx, model.UpcomingForCoachQuery(coachID, s.clock.Now()))
}

// PastSessionsForCoach прошедшие забронированные сессии коуча по убыванию end_time
func (s *QueryService) PastSessionsForCoach(ctx context.Context, coachID int64) ([]*model.Slot, error) {
	if err := s.requireCoach(ctx, coachID); err != nil {
		return nil, err
	}
	return s.find(ctx, model.PastSessionsForCoachQuery(coachID, s.clock.Now()))
}

// AllSlots все слоты без фильтрации
func (s *QueryService) AllSlots(ctx context.Context) ([]*model.Slot, error) {
	return s.find(ctx, model.AllSlotsQuery())
}

// ByID слот по идентификатору
func (s *QueryService) ByID(ctx context.Context, id int64) (*model.Slot, error) {
	if id <= 0 {
		return nil, ErrSlotNotFound
	}
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return nil, StoreError(err)
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	return slot, nil
}

func (s *QueryService) find(ctx context.Context, q model.SlotQuery) ([]*model.Slot, error) {
	slots, err := s.slots.Find(ctx, q)
	if err != nil {
		return nil, StoreError(err)
	}
	if slots == nil {
		slots = []*model.Slot{}
	}
	return slots, nil
}

func (s *QueryService) requireCoach(ctx context.Context, coachID int64) error {
	if coachID <= 0 {
		return ErrInvalidCoach
	}
	role, err := s.users.ResolveRole(ctx, coachID)
	if err != nil {
		return StoreError(err)
	}
	if role != model.RoleCoach {
		return ErrInvalidCoach
	}
	return nil
}
