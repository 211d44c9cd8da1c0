package model

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
	SlotStatusCompleted SlotStatus = "completed"
)

// Slot - одно бронируемое окно времени учителя.
// Date в формате ISO (YYYY-MM-DD), StartTime/EndTime в формате HH:MM,
// интервал полуоткрытый [StartTime, EndTime).
type Slot struct {
	ID           int64      `json:"id"`
	TeacherID    int64      `json:"teacher_id"`
	Date         string     `json:"date"`
	StartTime    string     `json:"start_time"`
	EndTime      string     `json:"end_time"`
	Location     string     `json:"location,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Status       SlotStatus `json:"status"`
	BookedBy     *int64     `json:"booked_by,omitempty"`     // указатель - может быть nil
	ParentSlotID *int64     `json:"parent_slot_id,omitempty"` // базовый слот серии, только для поиска
	SeriesID     *uuid.UUID `json:"series_id,omitempty"`      // общий идентификатор недельной серии
	CreatedAt    time.Time  `json:"created_at"`
}

// Overlaps проверяет пересечение с другим слотом той же даты
// (общая граница back-to-back слотов пересечением не считается).
func (s *Slot) Overlaps(date, startTime, endTime string) bool {
	return s.Date == date && startTime < s.EndTime && endTime > s.StartTime
}
