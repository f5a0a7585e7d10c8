package model

import "time"

type Role string

const (
	RoleCoach   Role = "coach"
	RoleStudent Role = "student"
)

// Valid проверяет что роль известна
func (r Role) Valid() bool {
	return r == RoleCoach || r == RoleStudent
}

type User struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Role        Role      `json:"user_type"`
	CreatedAt   time.Time `json:"created_at"`
}
