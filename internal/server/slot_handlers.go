package server

import (
	"net/http"
	"strconv"

	"github.com/Freeeeeet/campus_booking/internal/service"
	"github.com/julienschmidt/httprouter"
)

func parseID(ps httprouter.Params, name string) (int64, error) {
	return strconv.ParseInt(ps.ByName(name), 10, 64)
}

type createSlotRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Location  string `json:"location"`
	Notes     string `json:"notes"`
	Recurring bool   `json:"recurring"`
}

func (s *Server) handleCreateSlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	teacherID := currentUserID(r)
	slots, err := s.booking.CreateSlot(r.Context(), service.CreateSlotInput{
		TeacherID: teacherID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  req.Location,
		Notes:     req.Notes,
		Recurring: req.Recurring,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.avail.Invalidate(r.Context(), teacherID)
	s.writeJSON(w, http.StatusCreated, slots)
}

func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	slots, err := s.booking.GetSlots(r.Context(), currentUserID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, slots)
}

func (s *Server) handleDeleteSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseID(ps, "id")
	if err != nil {
		http.Error(w, "Invalid slot id", http.StatusBadRequest)
		return
	}

	teacherID := currentUserID(r)
	slot, err := s.booking.GetSlot(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if slot.TeacherID != teacherID {
		s.writeError(w, service.ErrPermissionDenied)
		return
	}

	if err := s.booking.DeleteSlot(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	s.avail.Invalidate(r.Context(), teacherID)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleAvailability отдаёт свободные слоты учителя начиная с сегодня.
// Список кешируется в Redis с коротким TTL.
func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	teacherID, err := parseID(ps, "id")
	if err != nil {
		http.Error(w, "Invalid teacher id", http.StatusBadRequest)
		return
	}

	if slots, ok := s.avail.GetSlots(r.Context(), teacherID); ok {
		s.writeJSON(w, http.StatusOK, slots)
		return
	}

	slots, err := s.booking.GetAvailableSlots(r.Context(), teacherID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.avail.SetSlots(r.Context(), teacherID, slots)
	s.writeJSON(w, http.StatusOK, slots)
}
