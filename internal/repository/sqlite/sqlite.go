// Package sqlite хранит слоты и пользователей во встроенной базе SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB подключение к SQLite с применённой схемой
type DB struct {
	db *sql.DB
}

// Open открывает базу по пути path (":memory:" для тестов) и применяет схему
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite поддерживает только одно write-подключение,
	// а ":memory:" на каждом подключении своя база
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &DB{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return store, nil
}

func (s *DB) migrate() error {
	if _, err := s.db.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	// Время хранится текстом фиксированной ширины в UTC (timeLayout),
	// поэтому строковое сравнение совпадает с хронологическим для годов 0000-9999
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			phone_number TEXT NOT NULL,
			user_type TEXT NOT NULL CHECK (user_type IN ('coach', 'student')),
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS slots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			coach_id INTEGER NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			is_booked INTEGER NOT NULL DEFAULT 0,
			student_id INTEGER,
			satisfaction_score INTEGER CHECK (satisfaction_score BETWEEN 1 AND 5),
			notes TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			CHECK ((student_id IS NOT NULL) = (is_booked = 1)),
			CHECK (satisfaction_score IS NULL OR is_booked = 1)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_slots_coach_start ON slots(coach_id, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_slots_start ON slots(start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_users_user_type ON users(user_type)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("execute migration query: %w", err)
		}
	}

	return nil
}

// Close закрывает подключение к базе данных
func (s *DB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping проверяет подключение к базе данных
func (s *DB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// timeLayout RFC 3339 с фиксированными девятью знаками дробной части
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", v, err)
	}
	return t.UTC(), nil
}

// checkYear отсекает время, которое не укладывается в фиксированную ширину timeLayout
func checkYear(t time.Time) error {
	if y := t.UTC().Year(); y < 0 || y > 9999 {
		return fmt.Errorf("time %s out of supported range", t)
	}
	return nil
}
