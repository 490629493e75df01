package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	total, occupied, available int
	byDept                     []DepartmentOccupancy
	queueDay                   time.Time
}

func (m *mockRepo) BedCounts(_ context.Context) (int, int, int, error) {
	return m.total, m.occupied, m.available, nil
}

func (m *mockRepo) OccupancyByDepartment(_ context.Context) ([]DepartmentOccupancy, error) {
	out := make([]DepartmentOccupancy, len(m.byDept))
	copy(out, m.byDept)
	return out, nil
}

func (m *mockRepo) QueueCountsForDay(_ context.Context, day time.Time) (QueueSummary, error) {
	m.queueDay = day
	return QueueSummary{Waiting: 4, InConsultation: 1, Completed: 7}, nil
}

func (m *mockRepo) AdmissionCounts(_ context.Context, _ time.Time) (AdmissionSummary, error) {
	return AdmissionSummary{Active: 12, DischargedToday: 3}, nil
}

func (m *mockRepo) InventoryCounts(_ context.Context) (InventorySummary, error) {
	return InventorySummary{LowStockItems: 2, CriticalStockItems: 1, ExpiringBatches: 5}, nil
}

func (m *mockRepo) PrescriptionCounts(_ context.Context, _ time.Time) (PrescriptionSummary, error) {
	return PrescriptionSummary{Pending: 6, DispensedToday: 9}, nil
}

func (m *mockRepo) AppointmentCounts(_ context.Context, _ time.Time) (AppointmentSummary, error) {
	return AppointmentSummary{ScheduledToday: 8, CompletedToday: 2}, nil
}

func TestSummary_FillsOccupancyRates(t *testing.T) {
	repo := &mockRepo{
		total:     30,
		occupied:  10,
		available: 18,
		byDept: []DepartmentOccupancy{
			{DepartmentID: uuid.New(), DepartmentName: "General Medicine", TotalBeds: 3, OccupiedBeds: 1},
			{DepartmentID: uuid.New(), DepartmentName: "Pediatrics", TotalBeds: 3, OccupiedBeds: 2},
			{DepartmentID: uuid.New(), DepartmentName: "Radiology", TotalBeds: 0, OccupiedBeds: 0},
		},
	}
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC) }

	out, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if out.Beds.OccupancyRate != 33 {
		t.Errorf("expected overall rate 33, got %d", out.Beds.OccupancyRate)
	}
	rates := []int{33, 67, 0}
	for i, want := range rates {
		if got := out.Beds.ByDepartment[i].OccupancyRate; got != want {
			t.Errorf("%s: expected rate %d, got %d", out.Beds.ByDepartment[i].DepartmentName, want, got)
		}
	}

	if out.Queue.Waiting != 4 || out.Admissions.Active != 12 || out.Inventory.CriticalStockItems != 1 {
		t.Error("summary did not carry through the repository counts")
	}

	// "Today" buckets are anchored to the start of the day.
	want := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	if !repo.queueDay.Equal(want) {
		t.Errorf("expected queue day %v, got %v", want, repo.queueDay)
	}
}
