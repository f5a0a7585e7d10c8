package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Freeeeeet/coach_scheduler/internal/model"
	"github.com/Freeeeeet/coach_scheduler/internal/repository/memory"
)

// countingUsers считает обращения к хранилищу пользователей
type countingUsers struct {
	*memory.Directory
	getByID  int
	listByID int
	err      error
}

func (c *countingUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	c.getByID++
	return c.Directory.GetByID(ctx, id)
}

func (c *countingUsers) ListByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	c.listByID++
	if c.err != nil {
		return nil, c.err
	}
	return c.Directory.ListByIDs(ctx, ids)
}

func newCountingUsers(t *testing.T, n int) *countingUsers {
	t.Helper()
	dir := memory.NewDirectory()
	for i := 0; i < n; i++ {
		if err := dir.Create(context.Background(), &model.User{Name: "u", Role: model.RoleStudent}); err != nil {
			t.Fatal(err)
		}
	}
	return &countingUsers{Directory: dir}
}

func TestLookupUsesSingleStoreCall(t *testing.T) {
	users := newCountingUsers(t, 3)
	svc := NewUserService(users)

	got, err := svc.Lookup(context.Background(), []int64{1, 2, 2, 3, 3, 1, 999, 0, -4})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(got) != 3 || got[1] == nil || got[2] == nil || got[3] == nil {
		t.Errorf("unexpected lookup result %+v", got)
	}
	if _, ok := got[999]; ok {
		t.Error("unknown id must be skipped")
	}
	if users.listByID != 1 || users.getByID != 0 {
		t.Errorf("store calls: ListByIDs=%d GetByID=%d, want 1 and 0", users.listByID, users.getByID)
	}
}

func TestLookupEmptySkipsStore(t *testing.T) {
	users := newCountingUsers(t, 1)
	svc := NewUserService(users)

	got, err := svc.Lookup(context.Background(), []int64{0, -1})
	if err != nil || len(got) != 0 {
		t.Fatalf("Lookup = %+v, %v", got, err)
	}
	if users.listByID != 0 {
		t.Errorf("ListByIDs called %d times for no valid ids", users.listByID)
	}
}

func TestLookupWrapsStoreError(t *testing.T) {
	users := newCountingUsers(t, 1)
	users.err = errors.New("connection reset")
	svc := NewUserService(users)

	_, err := svc.Lookup(context.Background(), []int64{1})
	if KindOf(err) != KindStore {
		t.Fatalf("expected store error, got %v", err)
	}
}
