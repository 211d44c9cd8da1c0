package model

import "time"

// Message - сообщение в переписке студент-учитель.
type Message struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"student_id"`
	TeacherID int64     `json:"teacher_id"`
	Sender    Role      `json:"sender"` // student или teacher
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
