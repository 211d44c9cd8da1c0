package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Freeeeeet/campus_booking/internal/model"
)

type AppointmentStore struct {
	mu           sync.Mutex
	appointments map[int64]*model.Appointment
	nextID       int64
}

func NewAppointmentStore() *AppointmentStore {
	return &AppointmentStore{appointments: make(map[int64]*model.Appointment)}
}

func (s *AppointmentStore) Create(_ context.Context, appt *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	appt.ID = s.nextID
	s.appointments[appt.ID] = cloneAppointment(appt)
	return nil
}

func (s *AppointmentStore) GetByID(_ context.Context, id int64) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.appointments[id]
	if !ok {
		return nil, nil
	}
	return cloneAppointment(appt), nil
}

func (s *AppointmentStore) GetByStudentID(_ context.Context, studentID int64) ([]*model.Appointment, error) {
	return s.filter(func(a *model.Appointment) bool { return a.StudentID == studentID })
}

func (s *AppointmentStore) GetByTeacherID(_ context.Context, teacherID int64) ([]*model.Appointment, error) {
	return s.filter(func(a *model.Appointment) bool { return a.TeacherID == teacherID })
}

func (s *AppointmentStore) GetActiveBefore(_ context.Context, date string) ([]*model.Appointment, error) {
	return s.filter(func(a *model.Appointment) bool {
		return !a.Status.IsTerminal() && a.Date < date
	})
}

func (s *AppointmentStore) Update(_ context.Context, appt *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appointments[appt.ID]; !ok {
		return fmt.Errorf("appointment %d not found", appt.ID)
	}
	s.appointments[appt.ID] = cloneAppointment(appt)
	return nil
}

func (s *AppointmentStore) filter(keep func(*model.Appointment) bool) ([]*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Appointment
	for _, appt := range s.appointments {
		if keep(appt) {
			out = append(out, cloneAppointment(appt))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func cloneAppointment(appt *model.Appointment) *model.Appointment {
	c := *appt
	if appt.ApprovedAt != nil {
		v := *appt.ApprovedAt
		c.ApprovedAt = &v
	}
	if appt.CancelledAt != nil {
		v := *appt.CancelledAt
		c.CancelledAt = &v
	}
	if appt.CancelledBy != nil {
		v := *appt.CancelledBy
		c.CancelledBy = &v
	}
	if appt.CompletedAt != nil {
		v := *appt.CompletedAt
		c.CompletedAt = &v
	}
	c.Slot = nil
	c.Student = nil
	c.Teacher = nil
	return &c
}
