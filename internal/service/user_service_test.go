package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/campus_booking/internal/model"
	"github.com/Freeeeeet/campus_booking/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	return NewUserService(memory.NewUserStore(), zap.NewNop())
}

func registerStudent(t *testing.T, svc *UserService, email, password string) *model.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		Role:      model.RoleStudent,
		FirstName: "Ivan",
		LastName:  "Petrov",
		Email:     email,
		Password:  password,
		StudentID: "ST-" + email,
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	svc := newUserService(t)

	user := registerStudent(t, svc, "ivan@example.com", "secret123")
	assert.Equal(t, model.UserStatusPending, user.Status)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	// Email нормализуется к нижнему регистру
	_, err := svc.Register(context.Background(), RegisterInput{
		Role:      model.RoleStudent,
		FirstName: "Ivan",
		Email:     "  IVAN@example.com ",
		Password:  "other",
	})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestRegister_DuplicateStudentNumber(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Role:      model.RoleStudent,
		FirstName: "Ivan",
		Email:     "ivan@example.com",
		Password:  "secret123",
		StudentID: "ST-001",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		Role:      model.RoleStudent,
		FirstName: "Petr",
		Email:     "petr@example.com",
		Password:  "secret123",
		StudentID: "ST-001",
	})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestRegister_MissingFields(t *testing.T) {
	svc := newUserService(t)

	tests := []struct {
		name                       string
		email, password, firstName string
	}{
		{"no email", "", "secret", "Ivan"},
		{"no password", "ivan@example.com", "", "Ivan"},
		{"no name", "ivan@example.com", "secret", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), RegisterInput{
				Role:      model.RoleStudent,
				FirstName: tt.firstName,
				Email:     tt.email,
				Password:  tt.password,
			})
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	user := registerStudent(t, svc, "ivan@example.com", "secret123")

	// До одобрения вход закрыт
	_, err := svc.Authenticate(ctx, "ivan@example.com", "secret123")
	assert.ErrorIs(t, err, ErrNotApproved)

	require.NoError(t, svc.Approve(ctx, user.ID))

	got, err := svc.Authenticate(ctx, "IVAN@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "ivan@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_Rejected(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	user := registerStudent(t, svc, "ivan@example.com", "secret123")
	require.NoError(t, svc.Reject(ctx, user.ID))

	_, err := svc.Authenticate(ctx, "ivan@example.com", "secret123")
	assert.ErrorIs(t, err, ErrNotApproved)
}

func TestGetTeachers_OnlyApproved(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	approved, err := svc.Register(ctx, RegisterInput{
		Role:      model.RoleTeacher,
		FirstName: "Anna",
		Email:     "anna@example.com",
		Password:  "secret123",
		Subject:   "Mathematics",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Approve(ctx, approved.ID))

	_, err = svc.Register(ctx, RegisterInput{
		Role:      model.RoleTeacher,
		FirstName: "Boris",
		Email:     "boris@example.com",
		Password:  "secret123",
	})
	require.NoError(t, err)

	registerStudent(t, svc, "ivan@example.com", "secret123")

	teachers, err := svc.GetTeachers(ctx)
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, approved.ID, teachers[0].ID)
}

func TestGetPending(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	a := registerStudent(t, svc, "a@example.com", "secret123")
	b := registerStudent(t, svc, "b@example.com", "secret123")
	require.NoError(t, svc.Approve(ctx, a.ID))

	pending, err := svc.GetPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].ID)
}
