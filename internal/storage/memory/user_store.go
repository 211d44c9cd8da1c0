package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Freeeeeet/campus_booking/internal/model"
)

type UserStore struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	nextID int64
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[int64]*model.User)}
}

func (s *UserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	user.ID = s.nextID
	c := *user
	s.users[user.ID] = &c
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	c := *user
	return &c, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return s.find(func(u *model.User) bool { return u.Email == email })
}

func (s *UserStore) GetByStudentNumber(_ context.Context, studentID string) (*model.User, error) {
	return s.find(func(u *model.User) bool { return u.StudentID == studentID })
}

func (s *UserStore) GetTeachers(_ context.Context) ([]*model.User, error) {
	return s.filter(func(u *model.User) bool {
		return u.Role == model.RoleTeacher && u.Status == model.UserStatusApproved
	})
}

func (s *UserStore) GetByStatus(_ context.Context, status model.UserStatus) ([]*model.User, error) {
	return s.filter(func(u *model.User) bool { return u.Status == status })
}

func (s *UserStore) UpdateStatus(_ context.Context, id int64, status model.UserStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.users[id]; ok {
		user.Status = status
	}
	return nil
}

func (s *UserStore) find(match func(*model.User) bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if match(user) {
			c := *user
			return &c, nil
		}
	}
	return nil, nil
}

func (s *UserStore) filter(keep func(*model.User) bool) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.User
	for _, user := range s.users {
		if keep(user) {
			c := *user
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
