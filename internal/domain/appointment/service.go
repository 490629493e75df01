package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/rules"
	"github.com/hms/hms/internal/platform/notify"
)

const defaultDurationMinutes = 15

type Service struct {
	appointments Repository
	events       notify.Publisher
	now          func() time.Time
}

func NewService(appointments Repository, events notify.Publisher) *Service {
	return &Service{appointments: appointments, events: events, now: time.Now}
}

// Schedule books a slot with the doctor. The slot must be in the future and
// must not overlap another live appointment of the same doctor.
func (s *Service) Schedule(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if a.DepartmentID == uuid.Nil {
		return fmt.Errorf("department_id is required")
	}
	if a.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled_at is required")
	}
	if a.ScheduledAt.Before(s.now()) {
		return fmt.Errorf("scheduled_at must be in the future")
	}
	if a.DurationMinutes == 0 {
		a.DurationMinutes = defaultDurationMinutes
	}
	if a.DurationMinutes < 0 {
		return fmt.Errorf("duration_minutes must be positive")
	}

	end := a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
	overlap, err := s.appointments.DoctorOverlap(ctx, a.DoctorID, a.ScheduledAt, end, uuid.Nil)
	if err != nil {
		return err
	}
	if overlap {
		return fmt.Errorf("doctor already has an appointment in that slot")
	}

	a.Status = rules.AppointmentScheduled
	if err := s.appointments.Create(ctx, a); err != nil {
		return err
	}
	s.events.Changed(ctx, "appointments")
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// Reschedule moves a scheduled or confirmed appointment to a new slot,
// re-checking the doctor's calendar.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, at time.Time, durationMinutes int) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != rules.AppointmentScheduled && a.Status != rules.AppointmentConfirmed {
		return nil, fmt.Errorf("cannot reschedule appointment in status %s", a.Status)
	}
	if at.Before(s.now()) {
		return nil, fmt.Errorf("scheduled_at must be in the future")
	}
	if durationMinutes <= 0 {
		durationMinutes = a.DurationMinutes
	}

	end := at.Add(time.Duration(durationMinutes) * time.Minute)
	overlap, err := s.appointments.DoctorOverlap(ctx, a.DoctorID, at, end, a.ID)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, fmt.Errorf("doctor already has an appointment in that slot")
	}

	a.ScheduledAt = at
	a.DurationMinutes = durationMinutes
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	s.events.Changed(ctx, "appointments")
	return a, nil
}

func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, rules.AppointmentConfirmed, nil)
}

func (s *Service) Start(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, rules.AppointmentInProgress, nil)
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID, notes *string) (*Appointment, error) {
	return s.transition(ctx, id, rules.AppointmentCompleted, func(a *Appointment) {
		if notes != nil {
			a.Notes = notes
		}
	})
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, rules.AppointmentCancelled, nil)
}

func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, rules.AppointmentNoShow, nil)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to string, stamp func(*Appointment)) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rules.AppointmentLifecycle.Can(a.Status, to) {
		return nil, fmt.Errorf("cannot move appointment from %s to %s", a.Status, to)
	}
	a.Status = to
	if stamp != nil {
		stamp(a)
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	s.events.Changed(ctx, "appointments")
	return a, nil
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.Search(ctx, params, limit, offset)
}
