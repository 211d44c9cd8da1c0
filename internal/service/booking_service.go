package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/campus_booking/internal/model"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
)

// recurringWeeks - сколько дополнительных недельных слотов создаётся
// при recurring=true (базовый + 4 недели вперёд).
const recurringWeeks = 4

// BookingService - движок бронирования: единственная точка, где меняются
// status/booked_by слота и статусы записей, всегда парными обновлениями.
type BookingService struct {
	slots        SlotStore
	appointments AppointmentStore
	logger       *zap.Logger
	now          func() time.Time
}

func NewBookingService(slots SlotStore, appointments AppointmentStore, logger *zap.Logger) *BookingService {
	return &BookingService{
		slots:        slots,
		appointments: appointments,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock подменяет источник времени. Для детерминированных тестов.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

type CreateSlotInput struct {
	TeacherID int64
	Date      string // YYYY-MM-DD
	StartTime string // HH:MM
	EndTime   string // HH:MM
	Location  string
	Notes     string
	Recurring bool
}

// CreateSlot создаёт слот учителя. При recurring=true дополнительно создаёт
// по слоту на те же день недели и время на 4 недели вперёд. Каждый недельный
// слот проверяется на конфликты независимо: конфликт одной недели не отменяет
// остальные, создание best-effort.
func (s *BookingService) CreateSlot(ctx context.Context, in CreateSlotInput) ([]*model.Slot, error) {
	baseDate, err := time.Parse(time.DateOnly, in.Date)
	if err != nil {
		return nil, ErrInvalidRange
	}
	if _, err := time.Parse("15:04", in.StartTime); err != nil {
		return nil, ErrInvalidRange
	}
	if _, err := time.Parse("15:04", in.EndTime); err != nil {
		return nil, ErrInvalidRange
	}
	if in.StartTime >= in.EndTime {
		return nil, ErrInvalidRange
	}

	if err := s.checkConflict(ctx, in.TeacherID, in.Date, in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	var seriesID *uuid.UUID
	if in.Recurring {
		id := uuid.New()
		seriesID = &id
	}

	base := &model.Slot{
		TeacherID: in.TeacherID,
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Location:  in.Location,
		Notes:     in.Notes,
		Status:    model.SlotStatusAvailable,
		SeriesID:  seriesID,
		CreatedAt: s.now(),
	}
	if err := s.slots.Create(ctx, base); err != nil {
		return nil, storeErr("create slot", err)
	}

	created := []*model.Slot{base}
	if !in.Recurring {
		s.logger.Info("Slot created",
			zap.Int64("slot_id", base.ID),
			zap.Int64("teacher_id", in.TeacherID),
			zap.String("date", in.Date),
		)
		return created, nil
	}

	// Еженедельные повторы через RRULE: тот же день недели и время,
	// FREQ=WEEKLY. Count включает базовую дату, её пропускаем.
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.WEEKLY,
		Count:   recurringWeeks + 1,
		Dtstart: baseDate,
	})
	if err != nil {
		return nil, ErrInvalidRange
	}

	for _, occ := range rule.All()[1:] {
		date := occ.Format(time.DateOnly)

		if err := s.checkConflict(ctx, in.TeacherID, date, in.StartTime, in.EndTime); err != nil {
			s.logger.Warn("Recurring slot skipped",
				zap.Int64("teacher_id", in.TeacherID),
				zap.String("date", date),
				zap.Error(err),
			)
			continue
		}

		child := &model.Slot{
			TeacherID:    in.TeacherID,
			Date:         date,
			StartTime:    in.StartTime,
			EndTime:      in.EndTime,
			Location:     in.Location,
			Notes:        in.Notes,
			Status:       model.SlotStatusAvailable,
			ParentSlotID: &base.ID,
			SeriesID:     seriesID,
			CreatedAt:    s.now(),
		}
		if err := s.slots.Create(ctx, child); err != nil {
			s.logger.Warn("Failed to create recurring slot",
				zap.Int64("teacher_id", in.TeacherID),
				zap.String("date", date),
				zap.Error(err),
			)
			continue
		}
		created = append(created, child)
	}

	s.logger.Info("Recurring slots created",
		zap.Int64("base_slot_id", base.ID),
		zap.Int64("teacher_id", in.TeacherID),
		zap.String("series_id", seriesID.String()),
		zap.Int("count", len(created)),
	)

	return created, nil
}

// checkConflict ищет пересечение полуоткрытого интервала [start, end) с любым
// слотом того же учителя на ту же дату. Общая граница конфликтом не считается.
func (s *BookingService) checkConflict(ctx context.Context, teacherID int64, date, startTime, endTime string) error {
	existing, err := s.slots.GetByDate(ctx, teacherID, date)
	if err != nil {
		return storeErr("get slots by date", err)
	}
	for _, slot := range existing {
		if slot.Overlaps(date, startTime, endTime) {
			return ErrSlotConflict
		}
	}
	return nil
}

// BookSlot бронирует свободный слот для студента и создаёт pending запись.
// Захват слота и создание записи - парное обновление: при ошибке создания
// записи захват компенсируется освобождением слота.
func (s *BookingService) BookSlot(ctx context.Context, slotID, studentID int64, purpose, message string) (*model.Appointment, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, storeErr("get slot", err)
	}
	if slot == nil {
		return nil, ErrNotFound
	}
	if slot.Status != model.SlotStatusAvailable {
		return nil, ErrSlotUnavailable
	}

	// Условный захват перечитывает статус внутри критической секции:
	// два конкурентных вызова не могут забронировать один слот.
	claimed, err := s.slots.Claim(ctx, slotID, studentID)
	if err != nil {
		return nil, storeErr("claim slot", err)
	}
	if !claimed {
		return nil, ErrSlotUnavailable
	}

	now := s.now()
	appt := &model.Appointment{
		StudentID: studentID,
		TeacherID: slot.TeacherID,
		SlotID:    slotID,
		Date:      slot.Date, // копия, не ссылка: изменение слота не меняет запись
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		Location:  slot.Location,
		Purpose:   purpose,
		Message:   message,
		Status:    model.AppointmentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		if _, relErr := s.slots.Release(ctx, slotID); relErr != nil {
			s.logger.Error("Failed to release slot after booking failure",
				zap.Int64("slot_id", slotID),
				zap.Error(relErr),
			)
		}
		return nil, storeErr("create appointment", err)
	}

	s.logger.Info("Slot booked",
		zap.Int64("appointment_id", appt.ID),
		zap.Int64("slot_id", slotID),
		zap.Int64("student_id", studentID),
	)

	return appt, nil
}

// CancelBooking отменяет запись и возвращает слот в available. Если слот уже
// удалён, отмена всё равно успешна: восстановление пропускается и логируется
// как восстановимая аномалия.
func (s *BookingService) CancelBooking(ctx context.Context, appointmentID int64, cancelledBy model.Role) (*model.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, storeErr("get appointment", err)
	}
	if appt == nil {
		return nil, ErrNotFound
	}
	if appt.Status.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}

	now := s.now()
	appt.Status = model.AppointmentStatusCancelled
	appt.CancelledAt = &now
	appt.CancelledBy = &cancelledBy
	appt.UpdatedAt = now
	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, storeErr("update appointment", err)
	}

	released, err := s.slots.Release(ctx, appt.SlotID)
	if err != nil {
		s.logger.Error("Failed to release slot on cancellation",
			zap.Int64("appointment_id", appointmentID),
			zap.Int64("slot_id", appt.SlotID),
			zap.Error(err),
		)
	} else if !released {
		s.logger.Warn("Slot missing or not booked, skipping restore",
			zap.Int64("appointment_id", appointmentID),
			zap.Int64("slot_id", appt.SlotID),
		)
	}

	s.logger.Info("Booking cancelled",
		zap.Int64("appointment_id", appointmentID),
		zap.String("cancelled_by", string(cancelledBy)),
	)

	return appt, nil
}

// DeleteSlot удаляет слот. Занятый слот удалить нельзя: сначала отменяется
// зависящая от него запись.
func (s *BookingService) DeleteSlot(ctx context.Context, slotID int64) error {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return storeErr("get slot", err)
	}
	if slot == nil {
		return ErrNotFound
	}
	if slot.Status == model.SlotStatusBooked {
		return ErrSlotInUse
	}

	if err := s.slots.Delete(ctx, slotID); err != nil {
		return storeErr("delete slot", err)
	}

	s.logger.Info("Slot deleted",
		zap.Int64("slot_id", slotID),
		zap.Int64("teacher_id", slot.TeacherID),
	)

	return nil
}

// ApproveAppointment одобряет pending запись от имени учителя.
// Повторное одобрение approved записи - no-op.
func (s *BookingService) ApproveAppointment(ctx context.Context, appointmentID, teacherID int64) (*model.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, storeErr("get appointment", err)
	}
	if appt == nil {
		return nil, ErrNotFound
	}
	if appt.TeacherID != teacherID {
		return nil, ErrPermissionDenied
	}
	if appt.Status.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}
	if appt.Status == model.AppointmentStatusApproved {
		return appt, nil
	}

	now := s.now()
	appt.Status = model.AppointmentStatusApproved
	appt.ApprovedAt = &now
	appt.UpdatedAt = now
	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, storeErr("update appointment", err)
	}

	s.logger.Info("Appointment approved",
		zap.Int64("appointment_id", appointmentID),
		zap.Int64("teacher_id", teacherID),
	)

	return appt, nil
}

// CompleteAppointment завершает запись и переводит её слот в completed.
func (s *BookingService) CompleteAppointment(ctx context.Context, appointmentID, teacherID int64) (*model.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, storeErr("get appointment", err)
	}
	if appt == nil {
		return nil, ErrNotFound
	}
	if appt.TeacherID != teacherID {
		return nil, ErrPermissionDenied
	}
	if appt.Status.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}

	if err := s.complete(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *BookingService) complete(ctx context.Context, appt *model.Appointment) error {
	now := s.now()
	appt.Status = model.AppointmentStatusCompleted
	appt.CompletedAt = &now
	appt.UpdatedAt = now
	if err := s.appointments.Update(ctx, appt); err != nil {
		return storeErr("update appointment", err)
	}

	if err := s.slots.UpdateStatus(ctx, appt.SlotID, model.SlotStatusCompleted); err != nil {
		s.logger.Warn("Failed to mark slot completed",
			zap.Int64("appointment_id", appt.ID),
			zap.Int64("slot_id", appt.SlotID),
			zap.Error(err),
		)
	}

	s.logger.Info("Appointment completed",
		zap.Int64("appointment_id", appt.ID),
		zap.Int64("slot_id", appt.SlotID),
	)

	return nil
}

// CompletePastAppointments завершает активные записи с прошедшей датой.
// Вызывается фоновой задачей раз в сутки.
func (s *BookingService) CompletePastAppointments(ctx context.Context) (int, error) {
	today := s.now().Format(time.DateOnly)
	due, err := s.appointments.GetActiveBefore(ctx, today)
	if err != nil {
		return 0, storeErr("get active appointments", err)
	}

	count := 0
	for _, appt := range due {
		if err := s.complete(ctx, appt); err != nil {
			s.logger.Error("Failed to complete past appointment",
				zap.Int64("appointment_id", appt.ID),
				zap.Error(err),
			)
			continue
		}
		count++
	}

	return count, nil
}

// GetSlot возвращает слот по ID.
func (s *BookingService) GetSlot(ctx context.Context, slotID int64) (*model.Slot, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, storeErr("get slot", err)
	}
	if slot == nil {
		return nil, ErrNotFound
	}
	return slot, nil
}

// GetAppointment возвращает запись по ID.
func (s *BookingService) GetAppointment(ctx context.Context, appointmentID int64) (*model.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, storeErr("get appointment", err)
	}
	if appt == nil {
		return nil, ErrNotFound
	}
	return appt, nil
}

// GetSlots возвращает все слоты учителя.
func (s *BookingService) GetSlots(ctx context.Context, teacherID int64) ([]*model.Slot, error) {
	slots, err := s.slots.GetByTeacherID(ctx, teacherID)
	if err != nil {
		return nil, storeErr("get slots by teacher", err)
	}
	return slots, nil
}

// GetAvailableSlots возвращает свободные слоты учителя начиная с сегодня.
func (s *BookingService) GetAvailableSlots(ctx context.Context, teacherID int64) ([]*model.Slot, error) {
	fromDate := s.now().Format(time.DateOnly)
	slots, err := s.slots.GetAvailable(ctx, teacherID, fromDate)
	if err != nil {
		return nil, storeErr("get available slots", err)
	}
	return slots, nil
}

// GetStudentAppointments возвращает все записи студента.
func (s *BookingService) GetStudentAppointments(ctx context.Context, studentID int64) ([]*model.Appointment, error) {
	appts, err := s.appointments.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, storeErr("get appointments by student", err)
	}
	return appts, nil
}

// GetTeacherAppointments возвращает все записи учителя.
func (s *BookingService) GetTeacherAppointments(ctx context.Context, teacherID int64) ([]*model.Appointment, error) {
	appts, err := s.appointments.GetByTeacherID(ctx, teacherID)
	if err != nil {
		return nil, storeErr("get appointments by teacher", err)
	}
	return appts, nil
}
