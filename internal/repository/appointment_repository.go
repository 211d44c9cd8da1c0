package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/campus_booking/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentColumns = `id, student_id, teacher_id, slot_id, date, start_time, end_time, location, purpose, message, status, approved_at, cancelled_at, cancelled_by, completed_at, created_at, updated_at`

type AppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

// Create создаёт новую запись на приём
func (r *AppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	query := `
		INSERT INTO appointments (student_id, teacher_id, slot_id, date, start_time, end_time, location, purpose, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		appt.StudentID,
		appt.TeacherID,
		appt.SlotID,
		appt.Date,
		appt.StartTime,
		appt.EndTime,
		appt.Location,
		appt.Purpose,
		appt.Message,
		appt.Status,
	).Scan(&appt.ID, &appt.CreatedAt, &appt.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}

	return nil
}

// GetByID получает запись по ID
func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}

	return appt, nil
}

// GetByStudentID получает все записи студента
func (r *AppointmentRepository) GetByStudentID(ctx context.Context, studentID int64) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE student_id = $1
		ORDER BY date, start_time
	`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("get appointments by student: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// GetByTeacherID получает все записи учителя
func (r *AppointmentRepository) GetByTeacherID(ctx context.Context, teacherID int64) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE teacher_id = $1
		ORDER BY date, start_time
	`

	rows, err := r.pool.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get appointments by teacher: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// GetActiveBefore получает активные записи с датой раньше указанной
func (r *AppointmentRepository) GetActiveBefore(ctx context.Context, date string) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE status IN ('pending', 'approved') AND date < $1
		ORDER BY date, start_time
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("get active appointments: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// Update обновляет статус и временные отметки записи
func (r *AppointmentRepository) Update(ctx context.Context, appt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET status = $1, approved_at = $2, cancelled_at = $3, cancelled_by = $4, completed_at = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		appt.Status,
		appt.ApprovedAt,
		appt.CancelledAt,
		appt.CancelledBy,
		appt.CompletedAt,
		appt.ID,
	).Scan(&appt.UpdatedAt)

	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}

	return nil
}

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var appt model.Appointment
	err := row.Scan(
		&appt.ID,
		&appt.StudentID,
		&appt.TeacherID,
		&appt.SlotID,
		&appt.Date,
		&appt.StartTime,
		&appt.EndTime,
		&appt.Location,
		&appt.Purpose,
		&appt.Message,
		&appt.Status,
		&appt.ApprovedAt,
		&appt.CancelledAt,
		&appt.CancelledBy,
		&appt.CompletedAt,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func scanAppointments(rows pgx.Rows) ([]*model.Appointment, error) {
	var appts []*model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, appt)
	}

	return appts, rows.Err()
}
