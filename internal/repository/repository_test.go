package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/Freeeeeet/coach_scheduler/internal/app"
	"github.com/Freeeeeet/coach_scheduler/internal/model"
	"github.com/Freeeeeet/coach_scheduler/internal/repository"
	"github.com/Freeeeeet/coach_scheduler/internal/repository/storetest"
	"github.com/Freeeeeet/coach_scheduler/internal/service"
	"github.com/Freeeeeet/coach_scheduler/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// openPool подключается к TEST_DB_DSN и применяет миграции
func openPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	migrator, err := app.NewMigrator(pool, migrations.FS, zap.NewNop())
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}
	defer migrator.Close()
	if err := migrator.Run(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return pool
}

// reset очищает таблицы и создаёт пользователей 1..200 для внешних ключей
func reset(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	if _, err := pool.Exec(ctx, `TRUNCATE slots, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, name, email, phone_number, user_type)
		SELECT g, 'user ' || g, 'user' || g || '@example.com', '', 'student'
		FROM generate_series(1, 200) AS g
	`)
	if err != nil {
		t.Fatalf("seed users: %v", err)
	}
	if _, err := pool.Exec(ctx, `SELECT setval('users_id_seq', 200)`); err != nil {
		t.Fatalf("setval: %v", err)
	}
}

func TestSlotRepository(t *testing.T) {
	pool := openPool(t)

	storetest.RunSlotStore(t, func(t *testing.T) service.SlotStore {
		reset(t, pool)
		return repository.NewSlotRepository(pool)
	})
}

func TestUserRepository(t *testing.T) {
	pool := openPool(t)
	reset(t, pool)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)

	coach := &model.User{Name: "Ann", Email: "ann@example.com", PhoneNumber: "+100", Role: model.RoleCoach}
	if err := users.Create(ctx, coach); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if coach.ID <= 200 {
		t.Errorf("id = %d, want > 200", coach.ID)
	}

	role, err := users.ResolveRole(ctx, coach.ID)
	if err != nil || role != model.RoleCoach {
		t.Errorf("ResolveRole = %q, %v", role, err)
	}
	role, err = users.ResolveRole(ctx, 100000)
	if err != nil || role != "" {
		t.Errorf("ResolveRole(missing) = %q, %v", role, err)
	}

	got, err := users.GetByID(ctx, coach.ID)
	if err != nil || got == nil || got.Email != "ann@example.com" {
		t.Errorf("GetByID = %+v, %v", got, err)
	}

	coaches, err := users.ListByRole(ctx, model.RoleCoach)
	if err != nil || len(coaches) != 1 || coaches[0].ID != coach.ID {
		t.Errorf("ListByRole = %d users, %v", len(coaches), err)
	}

	byIDs, err := users.ListByIDs(ctx, []int64{coach.ID, 1, 100000})
	if err != nil || len(byIDs) != 2 || byIDs[0].ID != 1 || byIDs[1].ID != coach.ID {
		t.Errorf("ListByIDs = %+v, %v", byIDs, err)
	}
}
