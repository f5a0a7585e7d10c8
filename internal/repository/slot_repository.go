package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/coach_scheduler/internal/model"
	"github.com/Freeeeeet/coach_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const slotColumns = `id, coach_id, start_time, end_time, is_booked, student_id, satisfaction_score, notes, created_at, updated_at`

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт новый слот. Поля перечитываются из RETURNING,
// чтобы вызывающий видел время с точностью TIMESTAMPTZ.
func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO slots (coach_id, start_time, end_time, is_booked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + slotColumns

	stored, err := scanSlot(r.Pool().QueryRow(
		ctx, query,
		slot.CoachID,
		slot.StartTime,
		slot.EndTime,
		slot.IsBooked,
		slot.CreatedAt,
		slot.UpdatedAt,
	))
	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	*slot = *stored
	return nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`

	slot, err := scanSlot(r.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// Book бронирует слот для студента одним условным UPDATE.
// Строка меняется только если is_booked = FALSE, поэтому из параллельных
// запросов выигрывает ровно один.
func (r *SlotRepository) Book(ctx context.Context, slotID, studentID int64, at time.Time) (*model.Slot, error) {
	query := `
		UPDATE slots
		SET is_booked = TRUE, student_id = $2, updated_at = $3
		WHERE id = $1 AND is_booked = FALSE
		RETURNING ` + slotColumns

	slot, err := scanSlot(r.Pool().QueryRow(ctx, query, slotID, studentID, at))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("book slot: %w", err)
	}

	return slot, nil
}

// UpdateFeedback перезаписывает оценку и заметки забронированного слота
func (r *SlotRepository) UpdateFeedback(ctx context.Context, slotID int64, score int, notes *string, at time.Time) (*model.Slot, error) {
	query := `
		UPDATE slots
		SET satisfaction_score = $2, notes = $3, updated_at = $4
		WHERE id = $1 AND is_booked = TRUE
		RETURNING ` + slotColumns

	slot, err := scanSlot(r.Pool().QueryRow(ctx, query, slotID, score, notes, at))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("update slot feedback: %w", err)
	}

	return slot, nil
}

// Find получает слоты по выборке
func (r *SlotRepository) Find(ctx context.Context, q model.SlotQuery) ([]*model.Slot, error) {
	where, args := slotWhere(q)
	query := `SELECT ` + slotColumns + ` FROM slots` + where + slotOrder(q.Order)

	rows, err := r.Pool().Query(ctx, query, args...)
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

func slotWhere(q model.SlotQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if q.CoachID != nil {
		add("coach_id = $%d", *q.CoachID)
	}
	if q.IsBooked != nil {
		add("is_booked = $%d", *q.IsBooked)
	}
	if q.StartAfter != nil {
		add("start_time > $%d", *q.StartAfter)
	}
	if q.EndBefore != nil {
		add("end_time < $%d", *q.EndBefore)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func slotOrder(order model.SlotOrder) string {
	switch order {
	case model.OrderByStartAsc:
		return " ORDER BY start_time ASC, id ASC"
	case model.OrderByEndDesc:
		return " ORDER BY end_time DESC, id ASC"
	default:
		return " ORDER BY id ASC"
	}
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var slot model.Slot
	err := row.Scan(
		&slot.ID,
		&slot.CoachID,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsBooked,
		&slot.StudentID,
		&slot.SatisfactionScore,
		&slot.Notes,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.StartTime = slot.StartTime.UTC()
	slot.EndTime = slot.EndTime.UTC()
	slot.CreatedAt = slot.CreatedAt.UTC()
	slot.UpdatedAt = slot.UpdatedAt.UTC()

	return &slot, nil
}
