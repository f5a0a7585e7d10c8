// Package handlers HTTP обработчики слотов и пользователей.
package handlers

import (
	"github.com/Freeeeeet/coach_scheduler/internal/service"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handlers содержит все HTTP обработчики
type Handlers struct {
	slotService  *service.SlotService
	queryService *service.QueryService
	userService  *service.UserService
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewHandlers(
	slotService *service.SlotService,
	queryService *service.QueryService,
	userService *service.UserService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		slotService:  slotService,
		queryService: queryService,
		userService:  userService,
		validate:     validator.New(),
		logger:       logger,
	}
}
