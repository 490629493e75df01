package opd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/rules"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/notify"
)

// checkInRetries bounds how often a check-in recomputes its token after
// losing a same-day race on the unique token constraint.
const checkInRetries = 3

type Service struct {
	queues Repository
	events notify.Publisher
	now    func() time.Time
}

func NewService(queues Repository, events notify.Publisher) *Service {
	return &Service{queues: queues, events: events, now: time.Now}
}

var validPriorities = map[string]bool{"normal": true, "urgent": true, "emergency": true}

// CheckIn adds a patient to a department's queue for today and assigns the
// next token. Two receptionists checking in simultaneously can compute the
// same token; the database rejects the duplicate and the loser re-reads.
func (s *Service) CheckIn(ctx context.Context, q *QueueEntry) error {
	if q.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if q.DepartmentID == uuid.Nil {
		return fmt.Errorf("department_id is required")
	}
	if q.Priority == "" {
		q.Priority = "normal"
	}
	if !validPriorities[q.Priority] {
		return fmt.Errorf("invalid priority: %s", q.Priority)
	}

	now := s.now()
	q.VisitDate = now.Truncate(24 * time.Hour)
	q.Status = rules.QueueWaiting
	q.CheckInTime = now

	var err error
	for attempt := 0; attempt < checkInRetries; attempt++ {
		var tokens []int
		tokens, err = s.queues.TokensForDay(ctx, q.DepartmentID, q.VisitDate)
		if err != nil {
			return err
		}
		q.TokenNumber = rules.NextToken(tokens)
		err = s.queues.Create(ctx, q)
		if err == nil {
			s.applyWaitTime(q)
			s.events.Changed(ctx, "opd_queues")
			return nil
		}
		if !db.IsUniqueViolation(err) {
			return err
		}
	}
	return fmt.Errorf("could not allocate queue token: %w", err)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*QueueEntry, error) {
	q, err := s.queues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.applyWaitTime(q)
	return q, nil
}

// StartConsultation moves a waiting patient into consultation and records
// which doctor took them.
func (s *Service) StartConsultation(ctx context.Context, id, doctorID uuid.UUID) (*QueueEntry, error) {
	return s.transition(ctx, id, rules.QueueInConsultation, func(q *QueueEntry) {
		now := s.now()
		q.ConsultationStartTime = &now
		if doctorID != uuid.Nil {
			q.DoctorID = &doctorID
		}
	})
}

// CompleteConsultation closes out an in-progress consultation.
func (s *Service) CompleteConsultation(ctx context.Context, id uuid.UUID, notes *string) (*QueueEntry, error) {
	return s.transition(ctx, id, rules.QueueCompleted, func(q *QueueEntry) {
		now := s.now()
		q.ConsultationEndTime = &now
		if notes != nil {
			q.Notes = notes
		}
	})
}

// Cancel removes a waiting patient from the queue. The token is not reused.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*QueueEntry, error) {
	return s.transition(ctx, id, rules.QueueCancelled, nil)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to string, stamp func(*QueueEntry)) (*QueueEntry, error) {
	q, err := s.queues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rules.QueueLifecycle.Can(q.Status, to) {
		return nil, fmt.Errorf("cannot move queue entry from %s to %s", q.Status, to)
	}
	q.Status = to
	if stamp != nil {
		stamp(q)
	}
	if err := s.queues.UpdateStatus(ctx, q); err != nil {
		return nil, err
	}
	s.applyWaitTime(q)
	s.events.Changed(ctx, "opd_queues")
	return q, nil
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*QueueEntry, int, error) {
	items, total, err := s.queues.Search(ctx, params, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, q := range items {
		s.applyWaitTime(q)
	}
	return items, total, nil
}

// applyWaitTime fills in the live wait for patients still in the queue.
// Entries past waiting keep a nil wait time.
func (s *Service) applyWaitTime(q *QueueEntry) {
	if q.Status != rules.QueueWaiting {
		return
	}
	mins := rules.WaitTimeMinutes(q.CheckInTime, s.now())
	q.WaitTimeMinutes = &mins
}
