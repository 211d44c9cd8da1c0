package server

import (
	"net/http"

	"github.com/Freeeeeet/campus_booking/internal/model"
	"github.com/Freeeeeet/campus_booking/internal/service"
	"github.com/julienschmidt/httprouter"
)

type bookSlotRequest struct {
	SlotID  int64  `json:"slot_id"`
	Purpose string `json:"purpose"`
	Message string `json:"message"`
}

func (s *Server) handleBookSlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req bookSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := s.booking.BookSlot(r.Context(), req.SlotID, currentUserID(r), req.Purpose, req.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.avail.Invalidate(r.Context(), appt.TeacherID)
	s.writeJSON(w, http.StatusCreated, appt)
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := currentUserID(r)

	var (
		appts []*model.Appointment
		err   error
	)
	switch currentRole(r) {
	case model.RoleTeacher:
		appts, err = s.booking.GetTeacherAppointments(r.Context(), userID)
	case model.RoleStudent:
		appts, err = s.booking.GetStudentAppointments(r.Context(), userID)
	default:
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, appts)
}

func (s *Server) handleCancelAppointment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseID(ps, "id")
	if err != nil {
		http.Error(w, "Invalid appointment id", http.StatusBadRequest)
		return
	}

	userID := currentUserID(r)
	role := currentRole(r)

	appt, err := s.booking.GetAppointment(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Отменить запись может её студент, её учитель или администратор
	allowed := role == model.RoleAdmin ||
		(role == model.RoleStudent && appt.StudentID == userID) ||
		(role == model.RoleTeacher && appt.TeacherID == userID)
	if !allowed {
		s.writeError(w, service.ErrPermissionDenied)
		return
	}

	cancelled, err := s.booking.CancelBooking(r.Context(), id, role)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.avail.Invalidate(r.Context(), cancelled.TeacherID)
	s.writeJSON(w, http.StatusOK, cancelled)
}

func (s *Server) handleApproveAppointment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseID(ps, "id")
	if err != nil {
		http.Error(w, "Invalid appointment id", http.StatusBadRequest)
		return
	}

	appt, err := s.booking.ApproveAppointment(r.Context(), id, currentUserID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, appt)
}

func (s *Server) handleCompleteAppointment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseID(ps, "id")
	if err != nil {
		http.Error(w, "Invalid appointment id", http.StatusBadRequest)
		return
	}

	appt, err := s.booking.CompleteAppointment(r.Context(), id, currentUserID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.avail.Invalidate(r.Context(), appt.TeacherID)
	s.writeJSON(w, http.StatusOK, appt)
}
