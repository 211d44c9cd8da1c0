package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Freeeeeet/campus_booking/internal/model"
	ics "github.com/arran4/golang-ical"
	"github.com/julienschmidt/httprouter"
)

// handleScheduleICS отдаёт расписание учителя как iCalendar-фид.
// Время без таймзоны: календарь floating, как и всё расписание.
func (s *Server) handleScheduleICS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	teacherID, err := parseID(ps, "id")
	if err != nil {
		http.Error(w, "Invalid teacher id", http.StatusBadRequest)
		return
	}

	teacher, err := s.users.GetByID(r.Context(), teacherID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if teacher.Role != model.RoleTeacher {
		http.Error(w, "Not a teacher", http.StatusNotFound)
		return
	}

	slots, err := s.booking.GetSlots(r.Context(), teacherID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	cal, err := buildScheduleCalendar(teacher, slots)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.ics"`)
	fmt.Fprint(w, cal.Serialize())
}

func buildScheduleCalendar(teacher *model.User, slots []*model.Slot) (*ics.Calendar, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//campus_booking//schedule//EN")

	for _, slot := range slots {
		start, err := time.Parse("2006-01-02 15:04", slot.Date+" "+slot.StartTime)
		if err != nil {
			return nil, fmt.Errorf("parse slot %d start: %w", slot.ID, err)
		}
		end, err := time.Parse("2006-01-02 15:04", slot.Date+" "+slot.EndTime)
		if err != nil {
			return nil, fmt.Errorf("parse slot %d end: %w", slot.ID, err)
		}

		event := cal.AddEvent(fmt.Sprintf("slot-%d@campus-booking", slot.ID))
		event.SetDtStampTime(slot.CreatedAt.UTC())
		event.SetStartAt(start)
		event.SetEndAt(end)

		switch slot.Status {
		case model.SlotStatusAvailable:
			event.SetSummary(fmt.Sprintf("Office hours: %s (open)", teacher.FullName()))
		default:
			event.SetSummary(fmt.Sprintf("Office hours: %s (busy)", teacher.FullName()))
		}
		if slot.Location != "" {
			event.SetLocation(slot.Location)
		}
		if slot.Notes != "" {
			event.SetDescription(slot.Notes)
		}
	}

	return cal, nil
}
