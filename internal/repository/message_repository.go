package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/campus_booking/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Create создаёт новое сообщение
func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	query := `
		INSERT INTO messages (student_id, teacher_id, sender, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		msg.StudentID,
		msg.TeacherID,
		msg.Sender,
		msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt)

	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	return nil
}

// GetConversation получает переписку студент-учитель по времени
func (r *MessageRepository) GetConversation(ctx context.Context, studentID, teacherID int64) ([]*model.Message, error) {
	query := `
		SELECT id, student_id, teacher_id, sender, content, read, created_at
		FROM messages
		WHERE student_id = $1 AND teacher_id = $2
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, studentID, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	defer rows.Close()

	var msgs []*model.Message
	for rows.Next() {
		var msg model.Message
		err := rows.Scan(
			&msg.ID,
			&msg.StudentID,
			&msg.TeacherID,
			&msg.Sender,
			&msg.Content,
			&msg.Read,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, &msg)
	}

	return msgs, rows.Err()
}

// MarkRead помечает прочитанными входящие сообщения переписки
func (r *MessageRepository) MarkRead(ctx context.Context, studentID, teacherID int64, reader model.Role) error {
	query := `
		UPDATE messages
		SET read = TRUE
		WHERE student_id = $1 AND teacher_id = $2 AND sender <> $3 AND NOT read
	`

	_, err := r.pool.Exec(ctx, query, studentID, teacherID, reader)
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}

	return nil
}

// CountUnread считает непрочитанные входящие сообщения пользователя
func (r *MessageRepository) CountUnread(ctx context.Context, userID int64, role model.Role) (int, error) {
	var column string
	switch role {
	case model.RoleStudent:
		column = "student_id"
	case model.RoleTeacher:
		column = "teacher_id"
	default:
		return 0, fmt.Errorf("count unread: unsupported role %q", role)
	}

	query := `SELECT count(*) FROM messages WHERE ` + column + ` = $1 AND sender <> $2 AND NOT read`

	var count int
	if err := r.pool.QueryRow(ctx, query, userID, role).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}

	return count, nil
}
