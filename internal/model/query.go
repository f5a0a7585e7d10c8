package model

import (
	"sort"
	"time"
)

type SlotOrder int

const (
	OrderByID SlotOrder = iota
	OrderByStartAsc
	OrderByEndDesc
)

// SlotQuery описывает выборку слотов. Пустые поля не фильтруют.
type SlotQuery struct {
	CoachID    *int64
	IsBooked   *bool
	StartAfter *time.Time // start_time > StartAfter
	EndBefore  *time.Time // end_time < EndBefore
	Order      SlotOrder
}

// Match проверяет попадает ли слот в выборку
func (q SlotQuery) Match(s *Slot) bool {
	if q.CoachID != nil && s.CoachID != *q.CoachID {
		return false
	}
	if q.IsBooked != nil && s.IsBooked != *q.IsBooked {
		return false
	}
	if q.StartAfter != nil && !s.StartTime.After(*q.StartAfter) {
		return false
	}
	if q.EndBefore != nil && !s.EndTime.Before(*q.EndBefore) {
		return false
	}
	return true
}

// AllSlotsQuery все слоты по порядку создания
func AllSlotsQuery() SlotQuery {
	return SlotQuery{Order: OrderByID}
}

// AvailableSlotsQuery свободные слоты, которые ещё не начались
func AvailableSlotsQuery(now time.Time) SlotQuery {
	booked := false
	return SlotQuery{IsBooked: &booked, StartAfter: &now, Order: OrderByStartAsc}
}

// UpcomingForCoachQuery будущие слоты коуча, и свободные и занятые
func UpcomingForCoachQuery(coachID int64, now time.Time) SlotQuery {
	return SlotQuery{CoachID: &coachID, StartAfter: &now, Order: OrderByStartAsc}
}

// PastSessionsForCoachQuery прошедшие забронированные сессии коуча, новые первыми
func PastSessionsForCoachQuery(coachID int64, now time.Time) SlotQuery {
	booked := true
	return SlotQuery{CoachID: &coachID, IsBooked: &booked, EndBefore: &now, Order: OrderByEndDesc}
}

// SortSlots сортирует слоты на месте, при равенстве по ID
func SortSlots(slots []*Slot, order SlotOrder) {
	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		switch order {
		case OrderByStartAsc:
			if !a.StartTime.Equal(b.StartTime) {
				return a.StartTime.Before(b.StartTime)
			}
		case OrderByEndDesc:
			if !a.EndTime.Equal(b.EndTime) {
				return a.EndTime.After(b.EndTime)
			}
		}
		return a.ID < b.ID
	})
}
