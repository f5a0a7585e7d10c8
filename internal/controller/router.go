// Package controller HTTP граница сервиса: маршруты и middleware Fiber.
package controller

import (
	"context"
	"time"

	"github.com/Freeeeeet/coach_scheduler/internal/controller/handlers"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const readyTimeout = 2 * time.Second

// Options параметры HTTP сервера
type Options struct {
	CORSOrigins string
	// Ready проверяет хранилище для /ready; nil означает всегда готов
	Ready func(ctx context.Context) error
}

// NewRouter собирает Fiber приложение со всеми маршрутами
func NewRouter(h *handlers.Handlers, opts Options, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "coach-scheduler",
		DisableStartupMessage: true,
		ErrorHandler:          handlers.ErrorHandler(logger),
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           90 * time.Second,
	})

	app.Use(handlers.RequestIDMiddleware())
	app.Use(handlers.ObservabilityMiddleware(logger))
	app.Use(recover.New())

	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/ready", readyHandler(opts.Ready, logger))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Литеральные пути регистрируются раньше /:id
	slots := api.Group("/slots")
	slots.Get("/", h.ListSlots)
	slots.Post("/", h.CreateSlot)
	slots.Get("/available", h.AvailableSlots)
	slots.Get("/coach/:coachId/upcoming", h.CoachUpcoming)
	slots.Get("/coach/:coachId/past", h.CoachPast)
	slots.Get("/:id", h.GetSlot)
	slots.Patch("/:id/book", h.BookSlot)
	slots.Patch("/:id/feedback", h.RecordFeedback)

	users := api.Group("/users")
	users.Get("/", h.ListUsers)
	users.Get("/type/coaches", h.ListCoaches)
	users.Get("/type/students", h.ListStudents)
	users.Get("/:id", h.GetUser)

	return app
}

func readyHandler(ready func(ctx context.Context) error, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ready == nil {
			return c.JSON(fiber.Map{"status": "ok"})
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
		defer cancel()

		if err := ready(ctx); err != nil {
			logger.Warn("Readiness check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
