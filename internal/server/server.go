// Package server - HTTP-интерфейс поверх сервисов. Авторизация по JWT,
// права проверяются здесь: движок бронирования доверяет переданным ID.
package server

import (
	"net/http"

	"github.com/Freeeeeet/campus_booking/internal/cache"
	"github.com/Freeeeeet/campus_booking/internal/model"
	"github.com/Freeeeeet/campus_booking/internal/service"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type Server struct {
	booking   *service.BookingService
	users     *service.UserService
	messages  *service.MessageService
	avail     *cache.AvailabilityCache
	logger    *zap.Logger
	jwtSecret []byte
	limiter   *rateLimiter
}

func NewServer(
	booking *service.BookingService,
	users *service.UserService,
	messages *service.MessageService,
	avail *cache.AvailabilityCache,
	logger *zap.Logger,
	jwtSecret string,
) *Server {
	return &Server{
		booking:   booking,
		users:     users,
		messages:  messages,
		avail:     avail,
		logger:    logger,
		jwtSecret: []byte(jwtSecret),
		limiter:   newRateLimiter(),
	}
}

// Router собирает все маршруты API.
func (s *Server) Router() *httprouter.Router {
	router := httprouter.New()

	router.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})

	// Аутентификация (с лимитом запросов по IP)
	router.POST("/api/auth/register", s.limiter.limit(s.handleRegister))
	router.POST("/api/auth/login", s.limiter.limit(s.handleLogin))

	// Учителя и их расписание
	router.GET("/api/teachers", s.authenticate(s.handleListTeachers))
	router.GET("/api/teachers/:id/availability", s.authenticate(s.handleAvailability))
	router.GET("/api/teachers/:id/schedule.ics", s.handleScheduleICS)

	// Слоты
	router.POST("/api/slots", s.requireRole(model.RoleTeacher, s.handleCreateSlot))
	router.GET("/api/slots", s.requireRole(model.RoleTeacher, s.handleListSlots))
	router.DELETE("/api/slots/:id", s.requireRole(model.RoleTeacher, s.handleDeleteSlot))

	// Записи на приём
	router.POST("/api/appointments", s.requireRole(model.RoleStudent, s.handleBookSlot))
	router.GET("/api/appointments", s.authenticate(s.handleListAppointments))
	router.POST("/api/appointments/:id/cancel", s.authenticate(s.handleCancelAppointment))
	router.POST("/api/appointments/:id/approve", s.requireRole(model.RoleTeacher, s.handleApproveAppointment))
	router.POST("/api/appointments/:id/complete", s.requireRole(model.RoleTeacher, s.handleCompleteAppointment))

	// Сообщения
	router.POST("/api/messages", s.authenticate(s.handleSendMessage))
	router.GET("/api/messages/unread", s.authenticate(s.handleUnreadCount))
	router.GET("/api/messages/with/:id", s.authenticate(s.handleConversation))

	// Администрирование аккаунтов
	router.GET("/api/admin/users/pending", s.requireRole(model.RoleAdmin, s.handlePendingUsers))
	router.POST("/api/admin/users/:id/approve", s.requireRole(model.RoleAdmin, s.handleApproveUser))
	router.POST("/api/admin/users/:id/reject", s.requireRole(model.RoleAdmin, s.handleRejectUser))

	return router
}
