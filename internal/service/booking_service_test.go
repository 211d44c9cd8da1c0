package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/campus_booking/internal/model"
	"github.com/Freeeeeet/campus_booking/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T) (*BookingService, *memory.SlotStore, *memory.AppointmentStore) {
	t.Helper()
	slots := memory.NewSlotStore()
	appointments := memory.NewAppointmentStore()
	svc := NewBookingService(slots, appointments, zap.NewNop()).
		WithClock(func() time.Time {
			return time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
		})
	return svc, slots, appointments
}

func mustCreateSlot(t *testing.T, svc *BookingService, date, start, end string) *model.Slot {
	t.Helper()
	created, err := svc.CreateSlot(context.Background(), CreateSlotInput{
		TeacherID: 1,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	return created[0]
}

func TestCreateSlot_InvalidRange(t *testing.T) {
	svc, _, _ := newTestEngine(t)

	tests := []struct {
		name             string
		date, start, end string
	}{
		{"start equals end", "2024-03-04", "10:00", "10:00"},
		{"start after end", "2024-03-04", "11:00", "10:00"},
		{"bad date", "04.03.2024", "10:00", "11:00"},
		{"bad start time", "2024-03-04", "10am", "11:00"},
		{"bad end time", "2024-03-04", "10:00", "25:99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSlot(context.Background(), CreateSlotInput{
				TeacherID: 1,
				Date:      tt.date,
				StartTime: tt.start,
				EndTime:   tt.end,
			})
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}

func TestCreateSlot_Conflicts(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	ctx := context.Background()

	mustCreateSlot(t, svc, "2024-03-04", "09:00", "10:00")

	tests := []struct {
		name       string
		start, end string
		wantErr    error
	}{
		{"back-to-back after does not conflict", "10:00", "11:00", nil},
		{"back-to-back before does not conflict", "08:00", "09:00", nil},
		{"overlapping tail conflicts", "09:30", "10:30", ErrSlotConflict},
		{"contained interval conflicts", "09:15", "09:45", ErrSlotConflict},
		{"covering interval conflicts", "08:30", "11:30", ErrSlotConflict},
		{"identical interval conflicts", "09:00", "10:00", ErrSlotConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSlot(ctx, CreateSlotInput{
				TeacherID: 1,
				Date:      "2024-03-04",
				StartTime: tt.start,
				EndTime:   tt.end,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateSlot_NoConflictAcrossTeachersOrDates(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	ctx := context.Background()

	mustCreateSlot(t, svc, "2024-03-04", "09:00", "10:00")

	// Другой учитель, то же время
	_, err := svc.CreateSlot(ctx, CreateSlotInput{
		TeacherID: 2,
		Date:      "2024-03-04",
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	assert.NoError(t, err)

	// Тот же учитель, другая дата
	_, err = svc.CreateSlot(ctx, CreateSlotInput{
		TeacherID: 1,
		Date:      "2024-03-05",
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	assert.NoError(t, err)
}

func TestCreateSlot_Recurring(t *testing.T) {
	svc, _, _ := newTestEngine(t)

	// 2024-01-01 - понедельник
	created, err := svc.CreateSlot(context.Background(), CreateSlotInput{
		TeacherID: 1,
		Date:      "2024-01-01",
		StartTime: "13:00",
		EndTime:   "14:00",
		Location:  "Room 101",
		Recurring: true,
	})
	require.NoError(t, err)
	require.Len(t, created, 5)

	wantDates := []string{"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22", "2024-01-29"}
	base := created[0]
	require.Nil(t, base.ParentSlotID)
	require.NotNil(t, base.SeriesID)

	for i, slot := range created {
		assert.Equal(t, wantDates[i], slot.Date)
		assert.Equal(t, "13:00", slot.StartTime)
		assert.Equal(t, "14:00", slot.EndTime)
		assert.Equal(t, "Room 101", slot.Location)
		assert.Equal(t, model.SlotStatusAvailable, slot.Status)
		require.NotNil(t, slot.SeriesID)
		assert.Equal(t, *base.SeriesID, *slot.SeriesID)
		if i > 0 {
			require.NotNil(t, slot.ParentSlotID)
			assert.Equal(t, base.ID, *slot.ParentSlotID)
		}
	}
}

func TestCreateSlot_RecurringPartialConflict(t *testing.T) {
	svc, _, _ := newTestEngine(t)

	// Занимаем третью неделю заранее
	mustCreateSlot(t, svc, "2024-01-15", "13:30", "14:30")

	created, err := svc.CreateSlot(context.Background(), CreateSlotInput{
		TeacherID: 1,
		Date:      "2024-01-01",
		StartTime: "13:00",
		EndTime:   "14:00",
		Recurring: true,
	})
	require.NoError(t, err)

	// Конфликт одной недели не отменяет остальные
	var dates []string
	for _, slot := range created {
		dates = append(dates, slot.Date)
	}
	assert.Equal(t, []string{"2024-01-01", "2024-01-08", "2024-01-22", "2024-01-29"}, dates)
}

func TestBookSlot(t *testing.T) {
	svc, slots, _ := newTestEngine(t)
	ctx := context.Background()

	slot := mustCreateSlot(t, svc, "2024-03-04", "13:00", "14:00")

	appt, err := svc.BookSlot(ctx, slot.ID, 42, "Thesis discussion", "Hi!")
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusPending, appt.Status)
	assert.Equal(t, int64(42), appt.StudentID)
	assert.Equal(t, slot.TeacherID, appt.TeacherID)
	assert.Equal(t, slot.ID, appt.SlotID)
	assert.Equal(t, "2024-03-04", appt.Date)
	assert.Equal(t, "13:00", appt.StartTime)
	assert.Equal(t, "14:00", appt.EndTime)
	assert.Equal(t, "Thesis discussion", appt.Purpose)

	stored, err := slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusBooked, stored.Status)
	require.NotNil(t, stored.BookedBy)
	assert.Equal(t, int64(42), *stored.BookedBy)
}

func TestBookSlot_NotFound(t *testing.T) {
	svc, _, _ := newTestEngine(t)

	_, err := svc.BookSlot(context.Background(), 999, 42, "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookSlot_AlreadyBooked(t *testing.T) {
	svc, _, appointments := newTestEngine(t)
	ctx := context.Background()

	slot := mustCreateSlot(t, svc, "2024-03-04", "13:00", "14:00")

	_, err := svc.BookSlot(ctx, slot.ID, 42, "", "")
	require.NoError(t, err)

	_, err = svc.BookSlot(ctx, slot.ID, 43, "", "")
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Повторная попытка не создаёт дубликат записи
	all, err := appointments.GetByTeacherID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestBookSlot_CopiesTimesFromSlot(t *testing.T) {
	svc, slots, _ := newTestEngine(t)
	ctx := context.Background()

	slot := mustCreateSlot(t, svc, "2024-03-04", "13:00", "14:00")

	appt, err := svc.BookSlot(ctx, slot.ID, 42, "", "")
	require.NoError(t, err)

	// Меняем слот задним числом: запись должна сохранить исходное время
	stored, err := slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	stored.StartTime = "15:00"
	stored.EndTime = "16:00"
	require.NoError(t, slots.Upsert(ctx, stored))

	got, err := svc.GetAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, "13:00", got.StartTime)
	assert.Equal(t, "14:00", got.EndTime)
}

func TestCancelBooking_RestoresSlot(t *testing.T) {
	svc, slots, _ := newTestEngine(t)
	ctx := context.Background()

	slot := mustCreateSlot(t, svc, "2024-03-04", "13:00", "14:00")
	appt, err := svc.BookSlot(ctx, slot.ID, 42, "", "")
	require.NoError(t, err)

	cancelled, err := svc.CancelBooking(ctx, appt.ID, model.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, model.RoleStudent, *cancelled.CancelledBy)

	stored, err := slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusAvailable, stored.Status)
	assert.Nil(t, stored.BookedBy)

	// Отмена полностью восстанавливает бронируемость
	_, err = svc.BookSlot(ctx, slot.ID, 43, "", "")
	assert.NoError(t, err)
}

func TestCancelBooking_Terminal(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	ctx := context.Background()

	slot := mustCreateSlot(t, svc, "2024-03-04", "13:00", "14:00")
	appt, err := svc.BookSlot(ctx, slot.ID, 42, "", "")
	require.NoError(t, err)

	_, err = svc.CancelBooking(ctx, appt.ID, model.RoleStudent)
	require.NoError(t, err)

	_, err = svc.CancelBooking(ctx, appt.ID, model.RoleStudent)
	assert.ErrorIs(t, err, ErrAlreadyTerminal)
}

func TestCancelBooking_NotFound(t *testing.T) {
	svc, _, _ := newTestEngine(t)

	_, err := svc.CancelBooking(context.Background(), 999, model.RoleStudent)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelBooking_SlotDeletedIndependently(t *testing.T) {
	svc, slots, _ := newTestEngine(t)
	ctx := context.Background()

	slot := mustCreateSlot(t, svc, "2024-03-04", "13:00", "14:00")
	appt, err := svc.BookSlot(ctx, slot.ID, 42, "", "")
	require.NoError(t, err)

	// Слот исчез из хранилища: отмена всё равно успешна
	require.NoError(t, slots.Delete(ctx, slot.ID))

	cancelled, err := svc.CancelBooking(ctx, appt.ID, model.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
}

func TestDeleteSlot(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	ctx := context.Background()

	slot := mustCreateSlot(t, svc, "2024-03-04", "13:00", "14:00")

	_, err := svc.BookSlot(ctx, slot.ID, 42, "", "")
	require.NoError(t, err)

	// Занятый слот удалить нельзя
	err = svc.DeleteSlot(ctx, slot.ID)
	assert.ErrorIs(t, err, ErrSlotInUse)

	free := mustCreateSlot(t, svc, "2024-03-05", "13:00", "14:00")
	require.NoError(t, svc.DeleteSlot(ctx, free.ID))

	_, err = svc.GetSlot(ctx, free.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSlot_NotFound(t *testing.T) {
	svc, _, _ := newTestEngine(t)

	err := svc.DeleteSlot(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Сценарий из жизни: студент A бронирует, студент B получает отказ,
// A отменяет, B бронирует успешно.
func TestBookingContention(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	ctx := context.Background()

	slot := mustCreateSlot(t, svc, "2024-03-04", "13:00", "14:00")

	apptA, err := svc.BookSlot(ctx, slot.ID, 100, "Exam prep", "")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, apptA.Status)

	_, err = svc.BookSlot(ctx, slot.ID, 200, "Exam prep", "")
	require.ErrorIs(t, err, ErrSlotUnavailable)

	_, err = svc.CancelBooking(ctx, apptA.ID, model.RoleStudent)
	require.NoError(t, err)

	apptB, err := svc.BookSlot(ctx, slot.ID, 200, "Exam prep", "")
	require.NoError(t, err)
	assert.Equal(t, int64(200), apptB.StudentID)
}

func TestApproveAppointment(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	ctx := context.Background()

	slot := mustCreateSlot(t, svc, "2024-03-04", "13:00", "14:00")
	appt, err := svc.BookSlot(ctx, slot.ID, 42, "", "")
	require.NoError(t, err)

	_, err = svc.ApproveAppointment(ctx, appt.ID, 999)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	approved, err := svc.ApproveAppointment(ctx, appt.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)

	// Отмена разрешена и после одобрения
	_, err = svc.CancelBooking(ctx, appt.ID, model.RoleTeacher)
	assert.NoError(t, err)
}

func TestCompleteAppointment(t *testing.T) {
	svc, slots, _ := newTestEngine(t)
	ctx := context.Background()

	slot := mustCreateSlot(t, svc, "2024-03-04", "13:00", "14:00")
	appt, err := svc.BookSlot(ctx, slot.ID, 42, "", "")
	require.NoError(t, err)

	completed, err := svc.CompleteAppointment(ctx, appt.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	stored, err := slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusCompleted, stored.Status)

	// Из терминального статуса переходов нет
	_, err = svc.CancelBooking(ctx, appt.ID, model.RoleStudent)
	assert.ErrorIs(t, err, ErrAlreadyTerminal)
}

func TestCompletePastAppointments(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	ctx := context.Background()

	past := mustCreateSlot(t, svc, "2023-12-18", "13:00", "14:00")
	future := mustCreateSlot(t, svc, "2024-03-04", "13:00", "14:00")

	pastAppt, err := svc.BookSlot(ctx, past.ID, 42, "", "")
	require.NoError(t, err)
	futureAppt, err := svc.BookSlot(ctx, future.ID, 42, "", "")
	require.NoError(t, err)

	// Часы стоят на 2024-01-01
	count, err := svc.CompletePastAppointments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := svc.GetAppointment(ctx, pastAppt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, got.Status)

	got, err = svc.GetAppointment(ctx, futureAppt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, got.Status)
}

func TestGetAvailableSlots(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	ctx := context.Background()

	mustCreateSlot(t, svc, "2023-12-18", "13:00", "14:00") // в прошлом
	s1 := mustCreateSlot(t, svc, "2024-02-05", "10:00", "11:00")
	s2 := mustCreateSlot(t, svc, "2024-01-15", "09:00", "10:00")
	s3 := mustCreateSlot(t, svc, "2024-01-15", "08:00", "09:00")

	booked := mustCreateSlot(t, svc, "2024-01-22", "09:00", "10:00")
	_, err := svc.BookSlot(ctx, booked.ID, 42, "", "")
	require.NoError(t, err)

	got, err := svc.GetAvailableSlots(ctx, 1)
	require.NoError(t, err)

	// Только будущие свободные, по возрастанию (дата, время начала)
	var ids []int64
	for _, slot := range got {
		ids = append(ids, slot.ID)
	}
	assert.Equal(t, []int64{s3.ID, s2.ID, s1.ID}, ids)
}
