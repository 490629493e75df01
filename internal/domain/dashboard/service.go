package dashboard

import (
	"context"
	"time"

	"github.com/hms/hms/internal/domain/rules"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Summary gathers the day's operational snapshot in one round of queries.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	day := s.now().Truncate(24 * time.Hour)

	total, occupied, available, err := s.repo.BedCounts(ctx)
	if err != nil {
		return nil, err
	}
	byDept, err := s.repo.OccupancyByDepartment(ctx)
	if err != nil {
		return nil, err
	}
	for i := range byDept {
		byDept[i].OccupancyRate = rules.OccupancyRate(byDept[i].OccupiedBeds, byDept[i].TotalBeds)
	}

	queue, err := s.repo.QueueCountsForDay(ctx, day)
	if err != nil {
		return nil, err
	}
	admissions, err := s.repo.AdmissionCounts(ctx, day)
	if err != nil {
		return nil, err
	}
	inventory, err := s.repo.InventoryCounts(ctx)
	if err != nil {
		return nil, err
	}
	prescriptions, err := s.repo.PrescriptionCounts(ctx, day)
	if err != nil {
		return nil, err
	}
	appointments, err := s.repo.AppointmentCounts(ctx, day)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Beds: BedSummary{
			Total:         total,
			Occupied:      occupied,
			Available:     available,
			OccupancyRate: rules.OccupancyRate(occupied, total),
			ByDepartment:  byDept,
		},
		Queue:         queue,
		Admissions:    admissions,
		Inventory:     inventory,
		Prescriptions: prescriptions,
		Appointments:  appointments,
	}, nil
}
