package app

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/coach_scheduler/internal/config"
	"github.com/Freeeeeet/coach_scheduler/internal/model"
	"github.com/Freeeeeet/coach_scheduler/internal/repository"
	"github.com/Freeeeeet/coach_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/coach_scheduler/internal/repository/sqlite"
	"github.com/Freeeeeet/coach_scheduler/internal/service"
	"github.com/Freeeeeet/coach_scheduler/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// userDirectory каталог пользователей: роли для движка и чтение для границы
type userDirectory interface {
	service.UserDirectory
	service.UserStore
	Create(ctx context.Context, user *model.User) error
}

// storage выбранное хранилище слотов и пользователей
type storage struct {
	slots service.SlotStore
	users userDirectory
	ping  func(ctx context.Context) error
	close func() error
}

// openStorage открывает хранилище по cfg.Store
func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	switch cfg.Store {
	case config.StorePostgres:
		return openPostgres(ctx, cfg, logger)
	case config.StoreSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Info("Using SQLite store", zap.String("path", cfg.SQLitePath))
		return &storage{
			slots: sqlite.NewSlotStore(db),
			users: sqlite.NewDirectory(db),
			ping:  db.Ping,
			close: db.Close,
		}, nil
	case config.StoreMemory:
		slots := memory.NewSlotStore()
		logger.Info("Using in-memory store")
		return &storage{
			slots: slots,
			users: memory.NewDirectory(),
			ping:  slots.Ping,
			close: func() error { return nil },
		}, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	slots := repository.NewSlotRepository(pool)
	if err := slots.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("✅ Connected to database")

	if cfg.MigrationsEnabled {
		if err := migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &storage{
		slots: slots,
		users: repository.NewUserRepository(pool),
		ping:  slots.Ping,
		close: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	migrator, err := NewMigrator(pool, migrations.FS, logger)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer migrator.Close()

	return migrator.Run(ctx)
}

// seedDemoUsers добавляет коуча и студента в пустой каталог
func seedDemoUsers(ctx context.Context, users userDirectory, logger *zap.Logger) error {
	existing, err := users.List(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	demo := []*model.User{
		{Name: "Demo Coach", Email: "coach@example.com", PhoneNumber: "+10000000001", Role: model.RoleCoach},
		{Name: "Demo Student", Email: "student@example.com", PhoneNumber: "+10000000002", Role: model.RoleStudent},
	}
	for _, u := range demo {
		if err := users.Create(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		logger.Info("Seeded demo user", zap.Int64("user_id", u.ID), zap.String("user_type", string(u.Role)))
	}
	return nil
}
