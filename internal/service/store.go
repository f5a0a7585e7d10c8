package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/coach_scheduler/internal/model"
)

// SlotStore хранилище слотов. Единственный компонент, который сохраняет изменения.
//
// Book и UpdateFeedback обязаны быть атомарными по строке: Book применяется только
// к слоту с is_booked = false, UpdateFeedback только к слоту с is_booked = true.
// Если условие не выполнено (или слота нет), возвращается nil, nil.
type SlotStore interface {
	Create(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id int64) (*model.Slot, error)
	Book(ctx context.Context, slotID, studentID int64, at time.Time) (*model.Slot, error)
	UpdateFeedback(ctx context.Context, slotID int64, score int, notes *string, at time.Time) (*model.Slot, error)
	Find(ctx context.Context, q model.SlotQuery) ([]*model.Slot, error)
}

// UserDirectory разрешает роль пользователя. Пустая роль без ошибки - пользователя нет.
type UserDirectory interface {
	ResolveRole(ctx context.Context, id int64) (model.Role, error)
}

// UserStore чтение пользователей для границы
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]*model.User, error)
	// ListByIDs возвращает найденных пользователей, отсутствующие ID пропускаются
	ListByIDs(ctx context.Context, ids []int64) ([]*model.User, error)
}
