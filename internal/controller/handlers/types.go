package handlers

import (
	"github.com/Freeeeeet/coach_scheduler/internal/model"
)

type createSlotRequest struct {
	CoachID   int64  `json:"coach_id" validate:"required,gt=0"`
	StartTime string `json:"start_time" validate:"required"`
}

type bookSlotRequest struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
}

// Диапазон оценки проверяет движок, чтобы сохранить порядок проверок
type feedbackRequest struct {
	SatisfactionScore *int    `json:"satisfaction_score" validate:"required"`
	Notes             *string `json:"notes"`
	CoachID           *int64  `json:"coach_id" validate:"omitempty,gt=0"`
}

// userSummary краткие данные пользователя внутри слота
type userSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// slotView слот с данными коуча и студента
type slotView struct {
	*model.Slot
	Coach   *userSummary `json:"coach,omitempty"`
	Student *userSummary `json:"student,omitempty"`
}

func summarize(u *model.User) *userSummary {
	if u == nil {
		return nil
	}
	return &userSummary{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
	}
}
