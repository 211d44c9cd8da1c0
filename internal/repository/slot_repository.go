package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/campus_booking/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const slotColumns = `id, teacher_id, date, start_time, end_time, location, notes, status, booked_by, parent_slot_id, series_id, created_at`

type SlotRepository struct {
	pool *pgxpool.Pool
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{pool: pool}
}

// Create создаёт новый слот
func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO slots (teacher_id, date, start_time, end_time, location, notes, status, booked_by, parent_slot_id, series_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		slot.TeacherID,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.Location,
		slot.Notes,
		slot.Status,
		slot.BookedBy,
		slot.ParentSlotID,
		slot.SeriesID,
	).Scan(&slot.ID, &slot.CreatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`

	var slot model.Slot
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&slot.ID,
		&slot.TeacherID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.Location,
		&slot.Notes,
		&slot.Status,
		&slot.BookedBy,
		&slot.ParentSlotID,
		&slot.SeriesID,
		&slot.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return &slot, nil
}

// GetByTeacherID получает все слоты учителя
func (r *SlotRepository) GetByTeacherID(ctx context.Context, teacherID int64) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE teacher_id = $1
		ORDER BY date, start_time
	`

	rows, err := r.pool.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get slots by teacher: %w", err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

// GetByDate получает слоты учителя на дату, для проверки пересечений
func (r *SlotRepository) GetByDate(ctx context.Context, teacherID int64, date string) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE teacher_id = $1 AND date = $2
		ORDER BY start_time
	`

	rows, err := r.pool.Query(ctx, query, teacherID, date)
	if err != nil {
		return nil, fmt.Errorf("get slots by date: %w", err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

// GetAvailable получает свободные слоты учителя начиная с даты
func (r *SlotRepository) GetAvailable(ctx context.Context, teacherID int64, fromDate string) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE teacher_id = $1
		  AND status = 'available'
		  AND date >= $2
		ORDER BY date, start_time
	`

	rows, err := r.pool.Query(ctx, query, teacherID, fromDate)
	if err != nil {
		return nil, fmt.Errorf("get available slots: %w", err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

// Upsert вставляет или перезаписывает слот по ID
func (r *SlotRepository) Upsert(ctx context.Context, slot *model.Slot) error {
	if slot.ID == 0 {
		return r.Create(ctx, slot)
	}

	query := `
		INSERT INTO slots (id, teacher_id, date, start_time, end_time, location, notes, status, booked_by, parent_slot_id, series_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			teacher_id = EXCLUDED.teacher_id,
			date = EXCLUDED.date,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			location = EXCLUDED.location,
			notes = EXCLUDED.notes,
			status = EXCLUDED.status,
			booked_by = EXCLUDED.booked_by,
			parent_slot_id = EXCLUDED.parent_slot_id,
			series_id = EXCLUDED.series_id
	`

	_, err := r.pool.Exec(
		ctx, query,
		slot.ID,
		slot.TeacherID,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.Location,
		slot.Notes,
		slot.Status,
		slot.BookedBy,
		slot.ParentSlotID,
		slot.SeriesID,
	)
	if err != nil {
		return fmt.Errorf("upsert slot: %w", err)
	}

	return nil
}

// Delete удаляет слот
func (r *SlotRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}

// Claim атомарно бронирует свободный слот для студента. Условный UPDATE
// перечитывает статус под блокировкой строки: конкурентный захват
// одного слота невозможен.
func (r *SlotRepository) Claim(ctx context.Context, slotID, studentID int64) (bool, error) {
	query := `
		UPDATE slots
		SET status = 'booked', booked_by = $1
		WHERE id = $2 AND status = 'available'
	`

	result, err := r.pool.Exec(ctx, query, studentID, slotID)
	if err != nil {
		return false, fmt.Errorf("claim slot: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// Release атомарно освобождает занятый слот
func (r *SlotRepository) Release(ctx context.Context, slotID int64) (bool, error) {
	query := `
		UPDATE slots
		SET status = 'available', booked_by = NULL
		WHERE id = $1 AND status = 'booked'
	`

	result, err := r.pool.Exec(ctx, query, slotID)
	if err != nil {
		return false, fmt.Errorf("release slot: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// UpdateStatus обновляет статус слота. booked_by заполнен только у занятых
// слотов, при любом другом статусе сбрасывается.
func (r *SlotRepository) UpdateStatus(ctx context.Context, slotID int64, status model.SlotStatus) error {
	query := `
		UPDATE slots
		SET status = $1,
		    booked_by = CASE WHEN $1 = 'booked' THEN booked_by ELSE NULL END
		WHERE id = $2
	`

	_, err := r.pool.Exec(ctx, query, status, slotID)
	if err != nil {
		return fmt.Errorf("update slot status: %w", err)
	}
	return nil
}

func scanSlots(rows pgx.Rows) ([]*model.Slot, error) {
	var slots []*model.Slot
	for rows.Next() {
		var slot model.Slot
		err := rows.Scan(
			&slot.ID,
			&slot.TeacherID,
			&slot.Date,
			&slot.StartTime,
			&slot.EndTime,
			&slot.Location,
			&slot.Notes,
			&slot.Status,
			&slot.BookedBy,
			&slot.ParentSlotID,
			&slot.SeriesID,
			&slot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, &slot)
	}

	return slots, rows.Err()
}
