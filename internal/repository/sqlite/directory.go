package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/coach_scheduler/internal/model"
)

const userColumns = `id, name, email, phone_number, user_type, created_at`

// Directory каталог пользователей в SQLite
type Directory struct {
	db *DB
}

func NewDirectory(db *DB) *Directory {
	return &Directory{db: db}
}

// Create сохраняет пользователя
func (d *Directory) Create(ctx context.Context, user *model.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	res, err := d.db.db.ExecContext(ctx,
		`INSERT INTO users (name, email, phone_number, user_type, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.Name, user.Email, user.PhoneNumber, string(user.Role), formatTime(user.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get user id: %w", err)
	}
	user.ID = id
	return nil
}

// ResolveRole возвращает роль пользователя или пустую строку
func (d *Directory) ResolveRole(ctx context.Context, id int64) (model.Role, error) {
	var role string
	err := d.db.db.QueryRowContext(ctx, `SELECT user_type FROM users WHERE id = ?`, id).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("resolve user role: %w", err)
	}
	return model.Role(role), nil
}

// GetByID получает пользователя по ID
func (d *Directory) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := scanUser(d.db.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// List получает всех пользователей
func (d *Directory) List(ctx context.Context) ([]*model.User, error) {
	return d.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
}

// ListByRole получает пользователей с ролью role
func (d *Directory) ListByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	return d.list(ctx, `SELECT `+userColumns+` FROM users WHERE user_type = ? ORDER BY id`, string(role))
}

// ListByIDs получает пользователей из списка ids одним запросом
func (d *Directory) ListByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	return d.list(ctx, `SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders+`) ORDER BY id`, args...)
}

func (d *Directory) list(ctx context.Context, query string, args ...any) ([]*model.User, error) {
	rows, err := d.db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		user    model.User
		role    string
		created string
		err     error
	)
	if err = row.Scan(&user.ID, &user.Name, &user.Email, &user.PhoneNumber, &role, &created); err != nil {
		return nil, err
	}
	user.Role = model.Role(role)
	if user.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &user, nil
}
