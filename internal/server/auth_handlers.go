package server

import (
	"net/http"

	"github.com/Freeeeeet/campus_booking/internal/model"
	"github.com/Freeeeeet/campus_booking/internal/service"
	"github.com/julienschmidt/httprouter"
)

type registerRequest struct {
	Role       model.Role `json:"role"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Email      string     `json:"email"`
	Password   string     `json:"password"`
	Phone      string     `json:"phone"`
	Department string     `json:"department"`
	StudentID  string     `json:"student_id"`
	Subject    string     `json:"subject"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Role != model.RoleStudent && req.Role != model.RoleTeacher {
		http.Error(w, "Role must be student or teacher", http.StatusBadRequest)
		return
	}

	user, err := s.users.Register(r.Context(), service.RegisterInput{
		Role:       req.Role,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Password:   req.Password,
		Phone:      req.Phone,
		Department: req.Department,
		StudentID:  req.StudentID,
		Subject:    req.Subject,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := s.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	token, err := s.issueToken(user.ID, user.Role)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (s *Server) handleListTeachers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	teachers, err := s.users.GetTeachers(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, teachers)
}

func (s *Server) handlePendingUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	users, err := s.users.GetPending(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleApproveUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseID(ps, "id")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	if err := s.users.Approve(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (s *Server) handleRejectUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseID(ps, "id")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	if err := s.users.Reject(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}
