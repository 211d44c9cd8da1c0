package service

import (
	"context"
	"strings"
	"time"

	"github.com/Freeeeeet/campus_booking/internal/model"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService - регистрация, вход и одобрение аккаунтов администратором.
type UserService struct {
	users  UserStore
	logger *zap.Logger
	now    func() time.Time
}

func NewUserService(users UserStore, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

type RegisterInput struct {
	Role       model.Role
	FirstName  string
	LastName   string
	Email      string
	Password   string
	Phone      string
	Department string
	StudentID  string // только для студентов
	Subject    string // только для учителей
}

// Register создаёт аккаунт в статусе pending до одобрения администратором.
// Повторная регистрация email или студенческого билета отклоняется.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" || in.FirstName == "" {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeErr("get user by email", err)
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	if in.Role == model.RoleStudent && in.StudentID != "" {
		existing, err := s.users.GetByStudentNumber(ctx, in.StudentID)
		if err != nil {
			return nil, storeErr("get user by student number", err)
		}
		if existing != nil {
			return nil, ErrAlreadyExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Role:         in.Role,
		Status:       model.UserStatusPending,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        email,
		PasswordHash: string(hash),
		Phone:        in.Phone,
		Department:   in.Department,
		StudentID:    in.StudentID,
		Subject:      in.Subject,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeErr("create user", err)
	}

	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("email", email),
	)

	return user, nil
}

// Authenticate проверяет учётные данные. Вход разрешён только одобренным
// аккаунтам.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, storeErr("get user by email", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != model.UserStatusApproved {
		return nil, ErrNotApproved
	}

	s.logger.Info("User logged in",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)

	return user, nil
}

// Approve одобряет pending аккаунт.
func (s *UserService) Approve(ctx context.Context, userID int64) error {
	return s.setStatus(ctx, userID, model.UserStatusApproved)
}

// Reject отклоняет pending аккаунт.
func (s *UserService) Reject(ctx context.Context, userID int64) error {
	return s.setStatus(ctx, userID, model.UserStatusRejected)
}

func (s *UserService) setStatus(ctx context.Context, userID int64, status model.UserStatus) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storeErr("get user", err)
	}
	if user == nil {
		return ErrNotFound
	}

	if err := s.users.UpdateStatus(ctx, userID, status); err != nil {
		return storeErr("update user status", err)
	}

	s.logger.Info("User status updated",
		zap.Int64("user_id", userID),
		zap.String("status", string(status)),
	)

	return nil
}

// GetByID возвращает пользователя по ID.
func (s *UserService) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr("get user", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// GetTeachers возвращает одобренных учителей.
func (s *UserService) GetTeachers(ctx context.Context) ([]*model.User, error) {
	teachers, err := s.users.GetTeachers(ctx)
	if err != nil {
		return nil, storeErr("get teachers", err)
	}
	return teachers, nil
}

// GetPending возвращает аккаунты, ожидающие одобрения.
func (s *UserService) GetPending(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.GetByStatus(ctx, model.UserStatusPending)
	if err != nil {
		return nil, storeErr("get pending users", err)
	}
	return users, nil
}
