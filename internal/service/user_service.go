package service

import (
	"context"

	"github.com/Freeeeeet/coach_scheduler/internal/model"
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// GetByID получает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, ErrUserNotFound
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, StoreError(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// List получает всех пользователей
func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, StoreError(err)
	}
	return nonNilUsers(users), nil
}

// Coaches получает всех коучей
func (s *UserService) Coaches(ctx context.Context) ([]*model.User, error) {
	return s.byRole(ctx, model.RoleCoach)
}

// Students получает всех студентов
func (s *UserService) Students(ctx context.Context) ([]*model.User, error) {
	return s.byRole(ctx, model.RoleStudent)
}

// Lookup возвращает пользователей по списку ID одним запросом к хранилищу; неизвестные пропускаются
func (s *UserService) Lookup(ctx context.Context, ids []int64) (map[int64]*model.User, error) {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id <= 0 {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	out := make(map[int64]*model.User, len(unique))
	if len(unique) == 0 {
		return out, nil
	}

	users, err := s.users.ListByIDs(ctx, unique)
	if err != nil {
		return nil, StoreError(err)
	}
	for _, user := range users {
		out[user.ID] = user
	}
	return out, nil
}

func (s *UserService) byRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, StoreError(err)
	}
	return nonNilUsers(users), nil
}

func nonNilUsers(users []*model.User) []*model.User {
	if users == nil {
		return []*model.User{}
	}
	return users
}
