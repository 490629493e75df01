package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hms/hms/internal/domain/rules"
	"github.com/hms/hms/internal/platform/notify"
)

type mockAppointmentRepo struct {
	appointments map[uuid.UUID]*Appointment
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appointments: make(map[uuid.UUID]*Appointment)}
}

func (m *mockAppointmentRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (m *mockAppointmentRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.appointments[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *mockAppointmentRepo) DoctorOverlap(_ context.Context, doctorID uuid.UUID, start, end time.Time, exclude uuid.UUID) (bool, error) {
	for _, a := range m.appointments {
		if a.DoctorID != doctorID || a.ID == exclude {
			continue
		}
		switch a.Status {
		case rules.AppointmentCancelled, rules.AppointmentNoShow, rules.AppointmentCompleted:
			continue
		}
		aEnd := a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
		if a.ScheduledAt.Before(end) && aEnd.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAppointmentRepo) Search(_ context.Context, _ map[string]string, _, _ int) ([]*Appointment, int, error) {
	var items []*Appointment
	for _, a := range m.appointments {
		cp := *a
		items = append(items, &cp)
	}
	return items, len(items), nil
}

func newTestService(repo *mockAppointmentRepo, now time.Time) *Service {
	svc := NewService(repo, notify.NopPublisher{})
	svc.now = func() time.Time { return now }
	return svc
}

func schedule(t *testing.T, svc *Service, doctorID uuid.UUID, at time.Time, minutes int) *Appointment {
	t.Helper()
	a := &Appointment{
		PatientID:       uuid.New(),
		DoctorID:        doctorID,
		DepartmentID:    uuid.New(),
		ScheduledAt:     at,
		DurationMinutes: minutes,
	}
	if err := svc.Schedule(context.Background(), a); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	return a
}

func TestSchedule_DefaultsAndValidation(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	svc := newTestService(newMockAppointmentRepo(), now)

	a := schedule(t, svc, uuid.New(), now.Add(time.Hour), 0)
	if a.Status != rules.AppointmentScheduled {
		t.Errorf("expected scheduled, got %s", a.Status)
	}
	if a.DurationMinutes != defaultDurationMinutes {
		t.Errorf("expected default duration %d, got %d", defaultDurationMinutes, a.DurationMinutes)
	}

	past := &Appointment{
		PatientID:    uuid.New(),
		DoctorID:     uuid.New(),
		DepartmentID: uuid.New(),
		ScheduledAt:  now.Add(-time.Hour),
	}
	if err := svc.Schedule(context.Background(), past); err == nil {
		t.Error("expected past slot rejected")
	}

	if err := svc.Schedule(context.Background(), &Appointment{}); err == nil {
		t.Error("expected empty appointment rejected")
	}
}

func TestSchedule_DoctorDoubleBooking(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	repo := newMockAppointmentRepo()
	svc := newTestService(repo, now)
	doctorID := uuid.New()

	schedule(t, svc, doctorID, now.Add(time.Hour), 30)

	// Overlapping slot for the same doctor is rejected.
	overlapping := &Appointment{
		PatientID:       uuid.New(),
		DoctorID:        doctorID,
		DepartmentID:    uuid.New(),
		ScheduledAt:     now.Add(time.Hour + 15*time.Minute),
		DurationMinutes: 30,
	}
	if err := svc.Schedule(context.Background(), overlapping); err == nil {
		t.Error("expected overlapping slot rejected")
	}

	// Back-to-back is fine.
	schedule(t, svc, doctorID, now.Add(time.Hour+30*time.Minute), 30)

	// Another doctor can take the same slot.
	schedule(t, svc, uuid.New(), now.Add(time.Hour), 30)
}

func TestSchedule_CancelledSlotFreesDoctor(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	repo := newMockAppointmentRepo()
	svc := newTestService(repo, now)
	doctorID := uuid.New()

	a := schedule(t, svc, doctorID, now.Add(time.Hour), 30)
	if _, err := svc.Cancel(context.Background(), a.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	schedule(t, svc, doctorID, now.Add(time.Hour), 30)
}

func TestLifecycle_HappyPath(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	repo := newMockAppointmentRepo()
	svc := newTestService(repo, now)

	a := schedule(t, svc, uuid.New(), now.Add(time.Hour), 15)

	if _, err := svc.Confirm(context.Background(), a.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.Start(context.Background(), a.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	notes := "follow up in two weeks"
	out, err := svc.Complete(context.Background(), a.ID, &notes)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out.Status != rules.AppointmentCompleted {
		t.Errorf("expected completed, got %s", out.Status)
	}
	if out.Notes == nil || *out.Notes != notes {
		t.Error("expected notes recorded on completion")
	}
}

func TestLifecycle_RejectedTransitions(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	repo := newMockAppointmentRepo()
	svc := newTestService(repo, now)

	// A scheduled appointment must be confirmed before it starts.
	a := schedule(t, svc, uuid.New(), now.Add(time.Hour), 15)
	if _, err := svc.Start(context.Background(), a.ID); err == nil {
		t.Error("expected start of unconfirmed appointment rejected")
	}

	// An in-progress appointment cannot be cancelled.
	b := schedule(t, svc, uuid.New(), now.Add(2*time.Hour), 15)
	if _, err := svc.Confirm(context.Background(), b.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.Start(context.Background(), b.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), b.ID); err == nil {
		t.Error("expected cancel of in-progress appointment rejected")
	}

	// Completed is terminal.
	if _, err := svc.Complete(context.Background(), b.ID, nil); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := svc.MarkNoShow(context.Background(), b.ID); err == nil {
		t.Error("expected no-show on completed appointment rejected")
	}
}

func TestMarkNoShow_FromAnyLiveStatus(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	repo := newMockAppointmentRepo()
	svc := newTestService(repo, now)

	a := schedule(t, svc, uuid.New(), now.Add(time.Hour), 15)
	if _, err := svc.MarkNoShow(context.Background(), a.ID); err != nil {
		t.Errorf("no-show from scheduled: %v", err)
	}

	b := schedule(t, svc, uuid.New(), now.Add(2*time.Hour), 15)
	if _, err := svc.Confirm(context.Background(), b.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.MarkNoShow(context.Background(), b.ID); err != nil {
		t.Errorf("no-show from confirmed: %v", err)
	}
}

func TestReschedule(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	repo := newMockAppointmentRepo()
	svc := newTestService(repo, now)
	doctorID := uuid.New()

	a := schedule(t, svc, doctorID, now.Add(time.Hour), 30)
	blocker := schedule(t, svc, doctorID, now.Add(3*time.Hour), 30)

	// Moving onto another live appointment is rejected.
	if _, err := svc.Reschedule(context.Background(), a.ID, blocker.ScheduledAt, 30); err == nil {
		t.Error("expected reschedule into occupied slot rejected")
	}

	// Moving to a free slot works; the old slot is released.
	out, err := svc.Reschedule(context.Background(), a.ID, now.Add(5*time.Hour), 20)
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if !out.ScheduledAt.Equal(now.Add(5 * time.Hour)) {
		t.Errorf("unexpected scheduled_at %v", out.ScheduledAt)
	}
	if out.DurationMinutes != 20 {
		t.Errorf("expected duration 20, got %d", out.DurationMinutes)
	}
	schedule(t, svc, doctorID, now.Add(time.Hour), 30)

	// Only scheduled/confirmed appointments can move.
	if _, err := svc.Confirm(context.Background(), out.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.Start(context.Background(), out.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Reschedule(context.Background(), out.ID, now.Add(6*time.Hour), 20); err == nil {
		t.Error("expected reschedule of in-progress appointment rejected")
	}
}
