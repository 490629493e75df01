package opd

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hms/hms/internal/domain/rules"
	"github.com/hms/hms/internal/platform/notify"
)

// mockQueueRepo enforces the same per-day token uniqueness the database
// does, so check-in races behave like they would against Postgres.
type mockQueueRepo struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*QueueEntry
}

func newMockQueueRepo() *mockQueueRepo {
	return &mockQueueRepo{entries: make(map[uuid.UUID]*QueueEntry)}
}

func dayKey(q *QueueEntry) string {
	return q.DepartmentID.String() + q.VisitDate.Format("2006-01-02")
}

func (m *mockQueueRepo) Create(_ context.Context, q *QueueEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if dayKey(e) == dayKey(q) && e.TokenNumber == q.TokenNumber {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	q.ID = uuid.New()
	cp := *q
	m.entries[q.ID] = &cp
	return nil
}

func (m *mockQueueRepo) GetByID(_ context.Context, id uuid.UUID) (*QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (m *mockQueueRepo) TokensForDay(_ context.Context, departmentID uuid.UUID, visitDate time.Time) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := departmentID.String() + visitDate.Format("2006-01-02")
	var tokens []int
	for _, e := range m.entries {
		if dayKey(e) == key {
			tokens = append(tokens, e.TokenNumber)
		}
	}
	return tokens, nil
}

func (m *mockQueueRepo) UpdateStatus(_ context.Context, q *QueueEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[q.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *q
	m.entries[q.ID] = &cp
	return nil
}

func (m *mockQueueRepo) Search(_ context.Context, _ map[string]string, _, _ int) ([]*QueueEntry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []*QueueEntry
	for _, e := range m.entries {
		cp := *e
		items = append(items, &cp)
	}
	return items, len(items), nil
}

func newTestService(repo *mockQueueRepo) *Service {
	return NewService(repo, notify.NopPublisher{})
}

func checkIn(t *testing.T, svc *Service, deptID uuid.UUID) *QueueEntry {
	t.Helper()
	q := &QueueEntry{PatientID: uuid.New(), DepartmentID: deptID}
	if err := svc.CheckIn(context.Background(), q); err != nil {
		t.Fatalf("check in: %v", err)
	}
	return q
}

func TestCheckIn_TokensStartAtOneAndIncrement(t *testing.T) {
	svc := newTestService(newMockQueueRepo())
	dept := uuid.New()

	first := checkIn(t, svc, dept)
	second := checkIn(t, svc, dept)
	third := checkIn(t, svc, dept)

	if first.TokenNumber != 1 || second.TokenNumber != 2 || third.TokenNumber != 3 {
		t.Errorf("expected tokens 1,2,3; got %d,%d,%d",
			first.TokenNumber, second.TokenNumber, third.TokenNumber)
	}
	if first.Status != rules.QueueWaiting {
		t.Errorf("expected waiting, got %s", first.Status)
	}
	if first.WaitTimeMinutes == nil {
		t.Error("expected wait time for waiting entry")
	}
}

func TestCheckIn_TokensIndependentPerDepartment(t *testing.T) {
	svc := newTestService(newMockQueueRepo())
	deptA, deptB := uuid.New(), uuid.New()

	checkIn(t, svc, deptA)
	checkIn(t, svc, deptA)
	b := checkIn(t, svc, deptB)

	if b.TokenNumber != 1 {
		t.Errorf("expected department B to start at 1, got %d", b.TokenNumber)
	}
}

func TestCheckIn_CancelledTokenNotReused(t *testing.T) {
	repo := newMockQueueRepo()
	svc := newTestService(repo)
	dept := uuid.New()

	first := checkIn(t, svc, dept)
	if _, err := svc.Cancel(context.Background(), first.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	next := checkIn(t, svc, dept)
	if next.TokenNumber != 2 {
		t.Errorf("expected cancelled token 1 skipped, got %d", next.TokenNumber)
	}
}

func TestCheckIn_ConcurrentSameDepartment(t *testing.T) {
	repo := newMockQueueRepo()
	svc := newTestService(repo)
	dept := uuid.New()

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q := &QueueEntry{PatientID: uuid.New(), DepartmentID: dept}
			errs <- svc.CheckIn(context.Background(), q)
		}()
	}
	wg.Wait()
	close(errs)

	// Collisions beyond the retry budget may fail; every success must
	// hold a distinct token.
	for err := range errs {
		if err != nil {
			t.Logf("check-in lost the race: %v", err)
		}
	}
	seen := map[int]bool{}
	for _, e := range repo.entries {
		if seen[e.TokenNumber] {
			t.Errorf("token %d issued twice", e.TokenNumber)
		}
		seen[e.TokenNumber] = true
	}
}

func TestCheckIn_Validation(t *testing.T) {
	svc := newTestService(newMockQueueRepo())

	if err := svc.CheckIn(context.Background(), &QueueEntry{DepartmentID: uuid.New()}); err == nil {
		t.Error("expected missing patient_id rejected")
	}
	if err := svc.CheckIn(context.Background(), &QueueEntry{PatientID: uuid.New()}); err == nil {
		t.Error("expected missing department_id rejected")
	}
	q := &QueueEntry{PatientID: uuid.New(), DepartmentID: uuid.New(), Priority: "vip"}
	if err := svc.CheckIn(context.Background(), q); err == nil {
		t.Error("expected invalid priority rejected")
	}
}

func TestConsultationLifecycle(t *testing.T) {
	svc := newTestService(newMockQueueRepo())
	dept := uuid.New()
	doctor := uuid.New()

	entry := checkIn(t, svc, dept)

	started, err := svc.StartConsultation(context.Background(), entry.ID, doctor)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != rules.QueueInConsultation {
		t.Errorf("expected in_consultation, got %s", started.Status)
	}
	if started.ConsultationStartTime == nil {
		t.Error("expected consultation start stamped")
	}
	if started.DoctorID == nil || *started.DoctorID != doctor {
		t.Error("expected doctor recorded")
	}
	if started.WaitTimeMinutes != nil {
		t.Error("wait time should not be reported once consultation starts")
	}

	notes := "follow up in two weeks"
	completed, err := svc.CompleteConsultation(context.Background(), entry.ID, &notes)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != rules.QueueCompleted {
		t.Errorf("expected completed, got %s", completed.Status)
	}
	if completed.ConsultationEndTime == nil {
		t.Error("expected consultation end stamped")
	}
}

func TestTransitions_Rejected(t *testing.T) {
	svc := newTestService(newMockQueueRepo())
	dept := uuid.New()

	entry := checkIn(t, svc, dept)

	// Completing before starting.
	if _, err := svc.CompleteConsultation(context.Background(), entry.ID, nil); err == nil {
		t.Error("expected waiting -> completed rejected")
	}

	// Cancelling mid-consultation.
	if _, err := svc.StartConsultation(context.Background(), entry.ID, uuid.New()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), entry.ID); err == nil {
		t.Error("expected in_consultation -> cancelled rejected")
	}

	// Re-starting a completed consultation.
	if _, err := svc.CompleteConsultation(context.Background(), entry.ID, nil); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := svc.StartConsultation(context.Background(), entry.ID, uuid.New()); err == nil {
		t.Error("expected completed -> in_consultation rejected")
	}
}
