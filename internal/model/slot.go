package model

import "time"

// SlotDuration фиксированная длительность слота
const SlotDuration = 2 * time.Hour

// Границы оценки удовлетворённости
const (
	MinSatisfactionScore = 1
	MaxSatisfactionScore = 5
)

type Slot struct {
	ID                int64     `json:"id"`
	CoachID           int64     `json:"coach_id"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	IsBooked          bool      `json:"is_booked"`
	StudentID         *int64    `json:"student_id"`         // nil пока слот не забронирован
	SatisfactionScore *int      `json:"satisfaction_score"` // nil пока нет отзыва
	Notes             *string   `json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TimePrecision точность хранения времени, как у TIMESTAMPTZ в Postgres
const TimePrecision = time.Microsecond

// NewSlot создаёт свободный слот коуча, начинающийся в start.
// Время приводится к UTC и обрезается до TimePrecision, чтобы все хранилища возвращали одно и то же.
func NewSlot(coachID int64, start, now time.Time) *Slot {
	start = start.UTC().Truncate(TimePrecision)
	now = now.Truncate(TimePrecision)
	return &Slot{
		CoachID:   coachID,
		StartTime: start,
		EndTime:   start.Add(SlotDuration),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone возвращает глубокую копию слота
func (s *Slot) Clone() *Slot {
	if s == nil {
		return nil
	}
	c := *s
	if s.StudentID != nil {
		v := *s.StudentID
		c.StudentID = &v
	}
	if s.SatisfactionScore != nil {
		v := *s.SatisfactionScore
		c.SatisfactionScore = &v
	}
	if s.Notes != nil {
		v := *s.Notes
		c.Notes = &v
	}
	return &c
}

// HasElapsed окно слота закончилось к моменту now
func (s *Slot) HasElapsed(now time.Time) bool {
	return !now.Before(s.EndTime)
}

// ValidScore проверяет что оценка в допустимом диапазоне
func ValidScore(score int) bool {
	return score >= MinSatisfactionScore && score <= MaxSatisfactionScore
}
