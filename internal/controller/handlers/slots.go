package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/Freeeeeet/coach_scheduler/internal/model"
	"github.com/Freeeeeet/coach_scheduler/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ListSlots GET /api/slots
func (h *Handlers) ListSlots(c *fiber.Ctx) error {
	slots, err := h.queryService.AllSlots(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(h.views(c.UserContext(), slots))
}

// GetSlot GET /api/slots/:id
func (h *Handlers) GetSlot(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return service.ErrSlotNotFound
	}

	slot, err := h.queryService.ByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(h.view(c.UserContext(), slot))
}

// CreateSlot POST /api/slots
func (h *Handlers) CreateSlot(c *fiber.Ctx) error {
	var req createSlotRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return service.ErrInvalidTime.WithError(err)
	}

	slot, err := h.slotService.Create(c.UserContext(), req.CoachID, start)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(h.view(c.UserContext(), slot))
}

// BookSlot PATCH /api/slots/:id/book
func (h *Handlers) BookSlot(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return service.ErrSlotNotFound
	}

	var req bookSlotRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	slot, err := h.slotService.Book(c.UserContext(), id, req.StudentID)
	if err != nil {
		return err
	}
	return c.JSON(h.view(c.UserContext(), slot))
}

// RecordFeedback PATCH /api/slots/:id/feedback
func (h *Handlers) RecordFeedback(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return service.ErrSlotNotFound
	}

	var req feedbackRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	var coachID int64
	if req.CoachID != nil {
		coachID = *req.CoachID
	}

	slot, err := h.slotService.RecordFeedback(c.UserContext(), id, coachID, *req.SatisfactionScore, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(h.view(c.UserContext(), slot))
}

// AvailableSlots GET /api/slots/available
func (h *Handlers) AvailableSlots(c *fiber.Ctx) error {
	slots, err := h.queryService.AvailableSlots(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(h.views(c.UserContext(), slots))
}

// CoachUpcoming GET /api/slots/coach/:coachId/upcoming
func (h *Handlers) CoachUpcoming(c *fiber.Ctx) error {
	coachID, ok := parseID(c.Params("coachId"))
	if !ok {
		return service.ErrInvalidCoach
	}

	slots, err := h.queryService.UpcomingForCoach(c.UserContext(), coachID)
	if err != nil {
		return err
	}
	return c.JSON(h.views(c.UserContext(), slots))
}

// CoachPast GET /api/slots/coach/:coachId/past
func (h *Handlers) CoachPast(c *fiber.Ctx) error {
	coachID, ok := parseID(c.Params("coachId"))
	if !ok {
		return service.ErrInvalidCoach
	}

	slots, err := h.queryService.PastSessionsForCoach(c.UserContext(), coachID)
	if err != nil {
		return err
	}
	return c.JSON(h.views(c.UserContext(), slots))
}

func (h *Handlers) view(ctx context.Context, slot *model.Slot) slotView {
	return h.views(ctx, []*model.Slot{slot})[0]
}

// views дополняет слоты данными коуча и студента. Если каталог недоступен,
// слоты отдаются без них.
func (h *Handlers) views(ctx context.Context, slots []*model.Slot) []slotView {
	ids := make([]int64, 0, len(slots)*2)
	for _, s := range slots {
		ids = append(ids, s.CoachID)
		if s.StudentID != nil {
			ids = append(ids, *s.StudentID)
		}
	}

	users, err := h.userService.Lookup(ctx, ids)
	if err != nil {
		h.logger.Warn("Failed to resolve slot participants", zap.Error(err))
		users = nil
	}

	views := make([]slotView, 0, len(slots))
	for _, s := range slots {
		v := slotView{Slot: s, Coach: summarize(users[s.CoachID])}
		if s.StudentID != nil {
			v.Student = summarize(users[*s.StudentID])
		}
		views = append(views, v)
	}
	return views
}

// parseID разбирает положительный целочисленный идентификатор из пути
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
