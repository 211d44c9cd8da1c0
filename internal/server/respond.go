package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Freeeeeet/campus_booking/internal/service"
	"go.uber.org/zap"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError переводит ошибки сервисов в HTTP-статусы. Текст для
// пользователя формирует клиент, здесь только машинное сообщение.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, service.ErrInvalidRange):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrSlotConflict),
		errors.Is(err, service.ErrSlotUnavailable),
		errors.Is(err, service.ErrAlreadyTerminal),
		errors.Is(err, service.ErrSlotInUse),
		errors.Is(err, service.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrPermissionDenied),
		errors.Is(err, service.ErrNotApproved):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("Unhandled error", zap.Error(err))
	}

	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
