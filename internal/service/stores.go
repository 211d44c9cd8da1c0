package service

import (
	"context"

	"github.com/Freeeeeet/campus_booking/internal/model"
)

// SlotStore хранит слоты. Реализации: internal/repository (Postgres)
// и internal/storage/memory. Валидации здесь нет - это работа движка.
// "Не найдено" - это (nil, nil), не ошибка.
type SlotStore interface {
	Create(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id int64) (*model.Slot, error)
	GetByTeacherID(ctx context.Context, teacherID int64) ([]*model.Slot, error)
	// GetByDate возвращает все слоты учителя на дату, для проверки пересечений.
	GetByDate(ctx context.Context, teacherID int64, date string) ([]*model.Slot, error)
	// GetAvailable возвращает свободные слоты с date >= fromDate,
	// отсортированные по (date, start_time).
	GetAvailable(ctx context.Context, teacherID int64, fromDate string) ([]*model.Slot, error)
	Upsert(ctx context.Context, slot *model.Slot) error
	Delete(ctx context.Context, id int64) error

	// Claim атомарно переводит слот available -> booked для студента.
	// Возвращает false если слот не существует или уже занят: условная
	// запись - и есть блокировка по slot id, статус перечитывается
	// внутри неё.
	Claim(ctx context.Context, slotID, studentID int64) (bool, error)
	// Release атомарно переводит слот booked -> available и сбрасывает
	// booked_by. Возвращает false если слот не существует или не занят.
	Release(ctx context.Context, slotID int64) (bool, error)
	UpdateStatus(ctx context.Context, slotID int64, status model.SlotStatus) error
}

// AppointmentStore хранит записи на приём. Записи никогда не удаляются,
// только меняют статус.
type AppointmentStore interface {
	Create(ctx context.Context, appt *model.Appointment) error
	GetByID(ctx context.Context, id int64) (*model.Appointment, error)
	GetByStudentID(ctx context.Context, studentID int64) ([]*model.Appointment, error)
	GetByTeacherID(ctx context.Context, teacherID int64) ([]*model.Appointment, error)
	Update(ctx context.Context, appt *model.Appointment) error
	// GetActiveBefore возвращает pending/approved записи с датой строго
	// раньше указанной. Используется фоновой задачей завершения.
	GetActiveBefore(ctx context.Context, date string) ([]*model.Appointment, error)
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByStudentNumber(ctx context.Context, studentID string) (*model.User, error)
	GetTeachers(ctx context.Context) ([]*model.User, error)
	GetByStatus(ctx context.Context, status model.UserStatus) ([]*model.User, error)
	UpdateStatus(ctx context.Context, id int64, status model.UserStatus) error
}

type MessageStore interface {
	Create(ctx context.Context, msg *model.Message) error
	GetConversation(ctx context.Context, studentID, teacherID int64) ([]*model.Message, error)
	// MarkRead помечает прочитанными входящие сообщения переписки
	// (отправленные другой стороной).
	MarkRead(ctx context.Context, studentID, teacherID int64, reader model.Role) error
	CountUnread(ctx context.Context, userID int64, role model.Role) (int, error)
}
