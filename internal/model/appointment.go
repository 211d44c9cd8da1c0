package model

import "time"

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"   // Ожидает одобрения учителя
	AppointmentStatusApproved  AppointmentStatus = "approved"  // Подтверждено учителем
	AppointmentStatusCancelled AppointmentStatus = "cancelled" // Отменено (терминальный)
	AppointmentStatusCompleted AppointmentStatus = "completed" // Завершено (терминальный)
)

// IsTerminal сообщает, допускает ли статус дальнейшие переходы.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCancelled || s == AppointmentStatusCompleted
}

// Appointment - заявка студента на слот. Date/StartTime/EndTime копируются
// из слота при бронировании, последующие изменения слота на запись не влияют.
type Appointment struct {
	ID          int64             `json:"id"`
	StudentID   int64             `json:"student_id"`
	TeacherID   int64             `json:"teacher_id"`
	SlotID      int64             `json:"slot_id"`
	Date        string            `json:"date"`
	StartTime   string            `json:"start_time"`
	EndTime     string            `json:"end_time"`
	Location    string            `json:"location,omitempty"`
	Purpose     string            `json:"purpose,omitempty"`
	Message     string            `json:"message,omitempty"`
	Status      AppointmentStatus `json:"status"`
	ApprovedAt  *time.Time        `json:"approved_at,omitempty"`
	CancelledAt *time.Time        `json:"cancelled_at,omitempty"`
	CancelledBy *Role             `json:"cancelled_by,omitempty"` // кто отменил: student или teacher
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	// Дополнительные поля для удобства (не из БД)
	Slot    *Slot `json:"slot,omitempty"`
	Student *User `json:"student,omitempty"`
	Teacher *User `json:"teacher,omitempty"`
}
