package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Freeeeeet/campus_booking/internal/model"
	"go.uber.org/zap"
)

// MessageService - переписка студент-учитель.
type MessageService struct {
	messages MessageStore
	logger   *zap.Logger
	now      func() time.Time
}

func NewMessageService(messages MessageStore, logger *zap.Logger) *MessageService {
	return &MessageService{
		messages: messages,
		logger:   logger,
		now:      time.Now,
	}
}

// Send отправляет сообщение в переписку студент-учитель.
func (s *MessageService) Send(ctx context.Context, studentID, teacherID int64, sender model.Role, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("empty message")
	}
	if sender != model.RoleStudent && sender != model.RoleTeacher {
		return nil, ErrPermissionDenied
	}

	msg := &model.Message{
		StudentID: studentID,
		TeacherID: teacherID,
		Sender:    sender,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, storeErr("create message", err)
	}

	s.logger.Info("Message sent",
		zap.Int64("message_id", msg.ID),
		zap.Int64("student_id", studentID),
		zap.Int64("teacher_id", teacherID),
		zap.String("sender", string(sender)),
	)

	return msg, nil
}

// Conversation возвращает переписку по времени и помечает входящие
// сообщения прочитанными для читающей стороны.
func (s *MessageService) Conversation(ctx context.Context, studentID, teacherID int64, reader model.Role) ([]*model.Message, error) {
	msgs, err := s.messages.GetConversation(ctx, studentID, teacherID)
	if err != nil {
		return nil, storeErr("get conversation", err)
	}

	if err := s.messages.MarkRead(ctx, studentID, teacherID, reader); err != nil {
		s.logger.Warn("Failed to mark messages read",
			zap.Int64("student_id", studentID),
			zap.Int64("teacher_id", teacherID),
			zap.Error(err),
		)
	}

	return msgs, nil
}

// UnreadCount возвращает число непрочитанных входящих сообщений.
func (s *MessageService) UnreadCount(ctx context.Context, userID int64, role model.Role) (int, error) {
	count, err := s.messages.CountUnread(ctx, userID, role)
	if err != nil {
		return 0, storeErr("count unread", err)
	}
	return count, nil
}
