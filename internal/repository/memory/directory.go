package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Freeeeeet/coach_scheduler/internal/model"
)

// Directory каталог пользователей в памяти
type Directory struct {
	mu     sync.RWMutex
	users  map[int64]*model.User
	nextID atomic.Int64
}

func NewDirectory() *Directory {
	return &Directory{users: make(map[int64]*model.User)}
}

// Create добавляет пользователя. Если ID не задан, он присваивается.
func (d *Directory) Create(_ context.Context, user *model.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if user.ID == 0 {
		user.ID = d.nextID.Add(1)
	} else if user.ID > d.nextID.Load() {
		d.nextID.Store(user.ID)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	u := *user
	d.users[user.ID] = &u
	return nil
}

// ResolveRole возвращает роль пользователя или пустую строку
func (d *Directory) ResolveRole(_ context.Context, id int64) (model.Role, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return "", nil
	}
	return u.Role, nil
}

// GetByID получает пользователя по ID
func (d *Directory) GetByID(_ context.Context, id int64) (*model.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

// List получает всех пользователей по ID
func (d *Directory) List(ctx context.Context) ([]*model.User, error) {
	return d.filter(func(*model.User) bool { return true }), nil
}

// ListByRole получает пользователей с ролью role
func (d *Directory) ListByRole(_ context.Context, role model.Role) ([]*model.User, error) {
	return d.filter(func(u *model.User) bool { return u.Role == role }), nil
}

// ListByIDs получает пользователей из списка ids
func (d *Directory) ListByIDs(_ context.Context, ids []int64) ([]*model.User, error) {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	return d.filter(func(u *model.User) bool {
		_, ok := want[u.ID]
		return ok
	}), nil
}

func (d *Directory) filter(keep func(*model.User) bool) []*model.User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	users := make([]*model.User, 0, len(d.users))
	for _, u := range d.users {
		if keep(u) {
			c := *u
			users = append(users, &c)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}
