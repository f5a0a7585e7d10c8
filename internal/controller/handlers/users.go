package handlers

import (
	"github.com/Freeeeeet/coach_scheduler/internal/service"
	"github.com/gofiber/fiber/v2"
)

// ListUsers GET /api/users
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	users, err := h.userService.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// GetUser GET /api/users/:id
func (h *Handlers) GetUser(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return service.ErrUserNotFound
	}

	user, err := h.userService.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// ListCoaches GET /api/users/type/coaches
func (h *Handlers) ListCoaches(c *fiber.Ctx) error {
	users, err := h.userService.Coaches(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// ListStudents GET /api/users/type/students
func (h *Handlers) ListStudents(c *fiber.Ctx) error {
	users, err := h.userService.Students(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}
