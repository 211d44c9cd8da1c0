package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Freeeeeet/campus_booking/internal/model"
)

type MessageStore struct {
	mu       sync.Mutex
	messages map[int64]*model.Message
	nextID   int64
}

func NewMessageStore() *MessageStore {
	return &MessageStore{messages: make(map[int64]*model.Message)}
}

func (s *MessageStore) Create(_ context.Context, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	msg.ID = s.nextID
	c := *msg
	s.messages[msg.ID] = &c
	return nil
}

func (s *MessageStore) GetConversation(_ context.Context, studentID, teacherID int64) ([]*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Message
	for _, msg := range s.messages {
		if msg.StudentID == studentID && msg.TeacherID == teacherID {
			c := *msg
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MessageStore) MarkRead(_ context.Context, studentID, teacherID int64, reader model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, msg := range s.messages {
		if msg.StudentID == studentID && msg.TeacherID == teacherID && msg.Sender != reader {
			msg.Read = true
		}
	}
	return nil
}

func (s *MessageStore) CountUnread(_ context.Context, userID int64, role model.Role) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, msg := range s.messages {
		if msg.Read || msg.Sender == role {
			continue
		}
		if (role == model.RoleStudent && msg.StudentID == userID) ||
			(role == model.RoleTeacher && msg.TeacherID == userID) {
			count++
		}
	}
	return count, nil
}
