package server

import (
	"net/http"

	"github.com/Freeeeeet/campus_booking/internal/model"
	"github.com/julienschmidt/httprouter"
)

type sendMessageRequest struct {
	CounterpartID int64  `json:"counterpart_id"`
	Content       string `json:"content"`
}

// conversationParties определяет пару (студент, учитель) переписки по
// роли текущего пользователя и идентификатору собеседника.
func conversationParties(userID int64, role model.Role, counterpartID int64) (studentID, teacherID int64, ok bool) {
	switch role {
	case model.RoleStudent:
		return userID, counterpartID, true
	case model.RoleTeacher:
		return counterpartID, userID, true
	default:
		return 0, 0, false
	}
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	role := currentRole(r)
	studentID, teacherID, ok := conversationParties(currentUserID(r), role, req.CounterpartID)
	if !ok {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	msg, err := s.messages.Send(r.Context(), studentID, teacherID, role, req.Content)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	counterpartID, err := parseID(ps, "id")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	role := currentRole(r)
	studentID, teacherID, ok := conversationParties(currentUserID(r), role, counterpartID)
	if !ok {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	msgs, err := s.messages.Conversation(r.Context(), studentID, teacherID, role)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	count, err := s.messages.UnreadCount(r.Context(), currentUserID(r), currentRole(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}
