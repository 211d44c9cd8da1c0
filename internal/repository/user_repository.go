package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/campus_booking/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, role, status, first_name, last_name, email, password_hash, phone, department, student_number, subject, created_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create создаёт нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (role, status, first_name, last_name, email, password_hash, phone, department, student_number, subject)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		user.Role,
		user.Status,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.Phone,
		user.Department,
		user.StudentID,
		user.Subject,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail получает пользователя по email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByStudentNumber получает пользователя по номеру студенческого билета
func (r *UserRepository) GetByStudentNumber(ctx context.Context, studentID string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE student_number = $1`, studentID)
}

// GetTeachers получает одобренных учителей
func (r *UserRepository) GetTeachers(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = 'teacher' AND status = 'approved'
		ORDER BY last_name, first_name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get teachers: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// GetByStatus получает пользователей по статусу аккаунта
func (r *UserRepository) GetByStatus(ctx context.Context, status model.UserStatus) ([]*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE status = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("get users by status: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// UpdateStatus обновляет статус аккаунта
func (r *UserRepository) UpdateStatus(ctx context.Context, id int64, status model.UserStatus) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var user model.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Role,
		&user.Status,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.Phone,
		&user.Department,
		&user.StudentID,
		&user.Subject,
		&user.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func scanUsers(rows pgx.Rows) ([]*model.User, error) {
	var users []*model.User
	for rows.Next() {
		var user model.User
		err := rows.Scan(
			&user.ID,
			&user.Role,
			&user.Status,
			&user.FirstName,
			&user.LastName,
			&user.Email,
			&user.PasswordHash,
			&user.Phone,
			&user.Department,
			&user.StudentID,
			&user.Subject,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}
