package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/coach_scheduler/internal/model"
	"github.com/Freeeeeet/coach_scheduler/internal/service"
)

// formatDateTime форматирует дату и время с днём недели
func formatDateTime(t time.Time) string {
	return fmt.Sprintf("%s %s", weekdayShort(t.Weekday()), t.Format("02.01.2006 15:04"))
}

// formatTimeRange форматирует диапазон времени
func formatTimeRange(start, end time.Time) string {
	return fmt.Sprintf("%s-%s", start.Format("15:04"), end.Format("15:04"))
}

func weekdayShort(weekday time.Weekday) string {
	names := []string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}
	if int(weekday) >= 0 && int(weekday) < len(names) {
		return names[weekday]
	}
	return "?"
}

// statusDisplay emoji и текст статуса слота
func statusDisplay(slot *model.Slot) string {
	if slot.IsBooked {
		return "🔴 Забронирован"
	}
	return "🟢 Свободен"
}

func scoreStars(score int) string {
	if score < model.MinSatisfactionScore || score > model.MaxSatisfactionScore {
		return "?"
	}
	return strings.Repeat("⭐", score)
}

// formatEvent текст уведомления о событии слота
func formatEvent(event service.SlotEvent) string {
	slot := event.Slot
	if slot == nil {
		return string(event.Type)
	}

	var sb strings.Builder
	switch event.Type {
	case service.EventSlotCreated:
		sb.WriteString("🆕 Новый слот\n\n")
	case service.EventSlotBooked:
		sb.WriteString("📅 Слот забронирован\n\n")
	case service.EventFeedbackRecorded:
		sb.WriteString("📝 Отзыв по сессии\n\n")
	default:
		sb.WriteString(string(event.Type) + "\n\n")
	}

	fmt.Fprintf(&sb, "Слот #%d, коуч #%d\n", slot.ID, slot.CoachID)
	fmt.Fprintf(&sb, "🕐 %s (%s UTC)\n", formatDateTime(slot.StartTime), formatTimeRange(slot.StartTime, slot.EndTime))
	sb.WriteString(statusDisplay(slot))

	if slot.StudentID != nil {
		fmt.Fprintf(&sb, "\n👤 Студент #%d", *slot.StudentID)
	}
	if event.Type == service.EventFeedbackRecorded && slot.SatisfactionScore != nil {
		fmt.Fprintf(&sb, "\nОценка: %s (%d/5)", scoreStars(*slot.SatisfactionScore), *slot.SatisfactionScore)
		if slot.Notes != nil && *slot.Notes != "" {
			fmt.Fprintf(&sb, "\nЗаметки: %s", *slot.Notes)
		}
	}

	return sb.String()
}
