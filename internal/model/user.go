package model

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

type UserStatus string

const (
	UserStatusPending  UserStatus = "pending" // Ожидает одобрения администратором
	UserStatusApproved UserStatus = "approved"
	UserStatusRejected UserStatus = "rejected"
)

type User struct {
	ID           int64      `json:"id"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Phone        string     `json:"phone,omitempty"`
	Department   string     `json:"department,omitempty"`
	StudentID    string     `json:"student_id,omitempty"` // номер студенческого билета
	Subject      string     `json:"subject,omitempty"`    // предмет учителя
	CreatedAt    time.Time  `json:"created_at"`
}

// FullName возвращает отображаемое имя пользователя.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
