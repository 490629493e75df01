package pharmacy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hms/hms/internal/domain/rules"
	"github.com/hms/hms/internal/platform/notify"
)

type mockPrescriptionRepo struct {
	prescriptions map[uuid.UUID]*Prescription
	items         map[uuid.UUID][]*PrescriptionItem
}

func newMockPrescriptionRepo() *mockPrescriptionRepo {
	return &mockPrescriptionRepo{
		prescriptions: make(map[uuid.UUID]*Prescription),
		items:         make(map[uuid.UUID][]*PrescriptionItem),
	}
}

func (m *mockPrescriptionRepo) Create(_ context.Context, p *Prescription) error {
	p.ID = uuid.New()
	cp := *p
	cp.Items = nil
	m.prescriptions[p.ID] = &cp
	return nil
}

func (m *mockPrescriptionRepo) CreateItem(_ context.Context, item *PrescriptionItem) error {
	item.ID = uuid.New()
	cp := *item
	m.items[item.PrescriptionID] = append(m.items[item.PrescriptionID], &cp)
	return nil
}

func (m *mockPrescriptionRepo) GetByID(_ context.Context, id uuid.UUID) (*Prescription, error) {
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *mockPrescriptionRepo) GetItems(_ context.Context, prescriptionID uuid.UUID) ([]*PrescriptionItem, error) {
	return m.items[prescriptionID], nil
}

func (m *mockPrescriptionRepo) UpdateStatus(_ context.Context, p *Prescription) error {
	stored, ok := m.prescriptions[p.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Status = p.Status
	stored.DispensedAt = p.DispensedAt
	stored.DispensedBy = p.DispensedBy
	return nil
}

func (m *mockPrescriptionRepo) Search(_ context.Context, _ map[string]string, _, _ int) ([]*Prescription, int, error) {
	var items []*Prescription
	for _, p := range m.prescriptions {
		cp := *p
		items = append(items, &cp)
	}
	return items, len(items), nil
}

type mockStockGateway struct {
	levels        map[uuid.UUID]int
	dispensations []uuid.UUID // item ids with ledger rows
}

func newMockStockGateway() *mockStockGateway {
	return &mockStockGateway{levels: make(map[uuid.UUID]int)}
}

func (m *mockStockGateway) LockItemStock(_ context.Context, itemID uuid.UUID) (int, error) {
	current, ok := m.levels[itemID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	return current, nil
}

func (m *mockStockGateway) DecrementStock(_ context.Context, itemID uuid.UUID, qty int) error {
	m.levels[itemID] -= qty
	return nil
}

func (m *mockStockGateway) RecordDispensation(_ context.Context, itemID uuid.UUID, _ int, _ uuid.UUID, _ *uuid.UUID) error {
	m.dispensations = append(m.dispensations, itemID)
	return nil
}

// rollbackRunner mimics transaction semantics over the stock mock: a failed
// function restores stock levels and the ledger to their prior state.
type rollbackRunner struct {
	stock *mockStockGateway
	repo  *mockPrescriptionRepo
}

func (r rollbackRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	levels := make(map[uuid.UUID]int, len(r.stock.levels))
	for k, v := range r.stock.levels {
		levels[k] = v
	}
	ledger := len(r.stock.dispensations)
	err := fn(ctx)
	if err != nil {
		r.stock.levels = levels
		r.stock.dispensations = r.stock.dispensations[:ledger]
	}
	return err
}

type fixture struct {
	svc   *Service
	repo  *mockPrescriptionRepo
	stock *mockStockGateway
}

func newFixture() *fixture {
	repo := newMockPrescriptionRepo()
	stock := newMockStockGateway()
	svc := NewService(repo, stock, rollbackRunner{stock: stock, repo: repo}, notify.NopPublisher{})
	return &fixture{svc: svc, repo: repo, stock: stock}
}

func (f *fixture) prescribe(t *testing.T, lines ...*PrescriptionItem) *Prescription {
	t.Helper()
	p := &Prescription{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Items:     lines,
	}
	if err := f.svc.Create(context.Background(), p); err != nil {
		t.Fatalf("create prescription: %v", err)
	}
	return p
}

func line(itemID uuid.UUID, qty int) *PrescriptionItem {
	return &PrescriptionItem{
		ItemID:    itemID,
		Dosage:    "500mg",
		Frequency: "twice daily",
		Duration:  "5 days",
		Quantity:  qty,
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name string
		p    Prescription
	}{
		{"missing patient", Prescription{DoctorID: uuid.New(), Items: []*PrescriptionItem{line(uuid.New(), 1)}}},
		{"missing doctor", Prescription{PatientID: uuid.New(), Items: []*PrescriptionItem{line(uuid.New(), 1)}}},
		{"no items", Prescription{PatientID: uuid.New(), DoctorID: uuid.New()}},
		{"zero quantity", Prescription{PatientID: uuid.New(), DoctorID: uuid.New(),
			Items: []*PrescriptionItem{line(uuid.New(), 0)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.svc.Create(context.Background(), &tt.p); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreate_StartsPendingAndLeavesStockAlone(t *testing.T) {
	f := newFixture()
	itemID := uuid.New()
	f.stock.levels[itemID] = 100

	p := f.prescribe(t, line(itemID, 10))

	if p.Status != rules.PrescriptionPending {
		t.Errorf("expected pending, got %s", p.Status)
	}
	if f.stock.levels[itemID] != 100 {
		t.Error("stock must not move on prescription create")
	}
}

func TestDispense_DecrementsEveryLine(t *testing.T) {
	f := newFixture()
	itemA, itemB := uuid.New(), uuid.New()
	f.stock.levels[itemA] = 100
	f.stock.levels[itemB] = 20

	p := f.prescribe(t, line(itemA, 10), line(itemB, 20))

	out, err := f.svc.Dispense(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("dispense: %v", err)
	}
	if out.Status != rules.PrescriptionDispensed {
		t.Errorf("expected dispensed, got %s", out.Status)
	}
	if out.DispensedAt == nil {
		t.Error("expected dispensed_at stamped")
	}
	if f.stock.levels[itemA] != 90 {
		t.Errorf("expected item A at 90, got %d", f.stock.levels[itemA])
	}
	if f.stock.levels[itemB] != 0 {
		t.Errorf("expected item B at 0, got %d", f.stock.levels[itemB])
	}
	if len(f.stock.dispensations) != 2 {
		t.Errorf("expected 2 ledger rows, got %d", len(f.stock.dispensations))
	}
}

func TestDispense_ShortfallRollsEverythingBack(t *testing.T) {
	f := newFixture()
	itemA, itemB := uuid.New(), uuid.New()
	f.stock.levels[itemA] = 100
	f.stock.levels[itemB] = 5 // not enough for the second line

	p := f.prescribe(t, line(itemA, 10), line(itemB, 20))

	if _, err := f.svc.Dispense(context.Background(), p.ID); err == nil {
		t.Fatal("expected insufficient stock error")
	}

	if f.stock.levels[itemA] != 100 {
		t.Errorf("expected item A untouched after rollback, got %d", f.stock.levels[itemA])
	}
	if len(f.stock.dispensations) != 0 {
		t.Errorf("expected no ledger rows after rollback, got %d", len(f.stock.dispensations))
	}
	stored, _ := f.repo.GetByID(context.Background(), p.ID)
	if stored.Status != rules.PrescriptionPending {
		t.Errorf("expected prescription still pending, got %s", stored.Status)
	}
}

func TestDispense_Twice(t *testing.T) {
	f := newFixture()
	itemID := uuid.New()
	f.stock.levels[itemID] = 100

	p := f.prescribe(t, line(itemID, 10))

	if _, err := f.svc.Dispense(context.Background(), p.ID); err != nil {
		t.Fatalf("first dispense: %v", err)
	}
	if _, err := f.svc.Dispense(context.Background(), p.ID); err == nil {
		t.Error("expected second dispense rejected")
	}
	if f.stock.levels[itemID] != 90 {
		t.Errorf("stock must not move twice, got %d", f.stock.levels[itemID])
	}
}

func TestCancel_OnlyPending(t *testing.T) {
	f := newFixture()
	itemID := uuid.New()
	f.stock.levels[itemID] = 100

	p := f.prescribe(t, line(itemID, 10))

	out, err := f.svc.Cancel(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if out.Status != rules.PrescriptionCancelled {
		t.Errorf("expected cancelled, got %s", out.Status)
	}

	// Cancelled prescriptions cannot be dispensed.
	if _, err := f.svc.Dispense(context.Background(), p.ID); err == nil {
		t.Error("expected dispense of cancelled prescription rejected")
	}

	// Dispensed prescriptions cannot be cancelled.
	p2 := f.prescribe(t, line(itemID, 5))
	if _, err := f.svc.Dispense(context.Background(), p2.ID); err != nil {
		t.Fatalf("dispense: %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), p2.ID); err == nil {
		t.Error("expected cancel of dispensed prescription rejected")
	}
}
