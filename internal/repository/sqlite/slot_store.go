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

const slotColumns = `id, coach_id, start_time, end_time, is_booked, student_id, satisfaction_score, notes, created_at, updated_at`

// SlotStore хранилище слотов в SQLite
type SlotStore struct {
	db *DB
}

func NewSlotStore(db *DB) *SlotStore {
	return &SlotStore{db: db}
}

// Create сохраняет слот и присваивает ему ID
func (s *SlotStore) Create(ctx context.Context, slot *model.Slot) error {
	query := `INSERT INTO slots (coach_id, start_time, end_time, is_booked, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	for _, t := range []time.Time{slot.StartTime, slot.EndTime, slot.CreatedAt, slot.UpdatedAt} {
		if err := checkYear(t); err != nil {
			return fmt.Errorf("create slot: %w", err)
		}
	}

	res, err := s.db.db.ExecContext(ctx, query,
		slot.CoachID,
		formatTime(slot.StartTime),
		formatTime(slot.EndTime),
		slot.IsBooked,
		formatTime(slot.CreatedAt),
		formatTime(slot.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get slot id: %w", err)
	}
	slot.ID = id

	return nil
}

// GetByID получает слот по ID
func (s *SlotStore) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = ?`

	slot, err := scanSlot(s.db.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}
	return slot, nil
}

// Book бронирует слот условным UPDATE по is_booked = 0
func (s *SlotStore) Book(ctx context.Context, slotID, studentID int64, at time.Time) (*model.Slot, error) {
	query := `UPDATE slots SET is_booked = 1, student_id = ?, updated_at = ?
			  WHERE id = ? AND is_booked = 0
			  RETURNING ` + slotColumns

	slot, err := scanSlot(s.db.db.QueryRowContext(ctx, query, studentID, formatTime(at), slotID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("book slot: %w", err)
	}
	return slot, nil
}

// UpdateFeedback перезаписывает оценку и заметки забронированного слота
func (s *SlotStore) UpdateFeedback(ctx context.Context, slotID int64, score int, notes *string, at time.Time) (*model.Slot, error) {
	query := `UPDATE slots SET satisfaction_score = ?, notes = ?, updated_at = ?
			  WHERE id = ? AND is_booked = 1
			  RETURNING ` + slotColumns

	var n sql.NullString
	if notes != nil {
		n = sql.NullString{String: *notes, Valid: true}
	}

	slot, err := scanSlot(s.db.db.QueryRowContext(ctx, query, score, n, formatTime(at), slotID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update slot feedback: %w", err)
	}
	return slot, nil
}

// Find получает слоты по выборке
func (s *SlotStore) Find(ctx context.Context, q model.SlotQuery) ([]*model.Slot, error) {
	var (
		conds []string
		args  []any
	)
	if q.CoachID != nil {
		conds = append(conds, "coach_id = ?")
		args = append(args, *q.CoachID)
	}
	if q.IsBooked != nil {
		conds = append(conds, "is_booked = ?")
		args = append(args, *q.IsBooked)
	}
	if q.StartAfter != nil {
		conds = append(conds, "start_time > ?")
		args = append(args, formatTime(*q.StartAfter))
	}
	if q.EndBefore != nil {
		conds = append(conds, "end_time < ?")
		args = append(args, formatTime(*q.EndBefore))
	}

	query := `SELECT ` + slotColumns + ` FROM slots`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	switch q.Order {
	case model.OrderByStartAsc:
		query += ` ORDER BY start_time ASC, id ASC`
	case model.OrderByEndDesc:
		query += ` ORDER BY end_time DESC, id ASC`
	default:
		query += ` ORDER BY id ASC`
	}

	rows, err := s.db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(row rowScanner) (*model.Slot, error) {
	var (
		slot                         model.Slot
		start, end, created, updated string
		studentID, score             sql.NullInt64
		notes                        sql.NullString
	)
	err := row.Scan(
		&slot.ID,
		&slot.CoachID,
		&start,
		&end,
		&slot.IsBooked,
		&studentID,
		&score,
		&notes,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		dst *time.Time
		src string
	}{
		{&slot.StartTime, start},
		{&slot.EndTime, end},
		{&slot.CreatedAt, created},
		{&slot.UpdatedAt, updated},
	} {
		if *f.dst, err = parseTime(f.src); err != nil {
			return nil, err
		}
	}
	if studentID.Valid {
		v := studentID.Int64
		slot.StudentID = &v
	}
	if score.Valid {
		v := int(score.Int64)
		slot.SatisfactionScore = &v
	}
	if notes.Valid {
		v := notes.String
		slot.Notes = &v
	}

	return &slot, nil
}
