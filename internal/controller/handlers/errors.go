package handlers

import (
	"errors"

	"github.com/Freeeeeet/coach_scheduler/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var errInvalidBody = &service.Error{Kind: service.KindValidation, Code: "INVALID_BODY", Message: "invalid request body"}

// fieldErrors ошибка движка для каждого проверяемого поля запроса
var fieldErrors = map[string]*service.Error{
	"CoachID":           service.ErrInvalidCoach,
	"StartTime":         service.ErrInvalidTime,
	"StudentID":         service.ErrInvalidStudent,
	"SatisfactionScore": service.ErrInvalidScore,
}

// StatusOf HTTP статус для категории ошибки
func StatusOf(kind service.Kind) int {
	switch kind {
	case service.KindNotFound:
		return fiber.StatusNotFound
	case service.KindValidation, service.KindConflict:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler единый ответ на ошибки обработчиков: {"error", "code"}.
// Детали сбоев хранилища только логируются.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fe.Message,
				"code":  httpCode(fe.Code),
			})
		}

		e, ok := service.AsError(err)
		if !ok || e.Kind == service.KindStore {
			logger.Error("Request failed",
				zap.String("request_id", RequestID(c)),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
				"code":  "INTERNAL",
			})
		}

		return c.Status(StatusOf(e.Kind)).JSON(fiber.Map{
			"error": e.Message,
			"code":  e.Code,
		})
	}
}

func httpCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusServiceUnavailable:
		return "UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}

// parseBody разбирает JSON тело и проверяет его теги validate
func (h *Handlers) parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return errInvalidBody.WithError(err)
	}

	if err := h.validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			if mapped, ok := fieldErrors[ve[0].StructField()]; ok {
				return mapped
			}
		}
		return errInvalidBody.WithError(err)
	}

	return nil
}
