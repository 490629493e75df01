package admin

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/rules"
	"github.com/hms/hms/internal/platform/notify"
)

type Service struct {
	departments DepartmentRepository
	beds        BedRepository
	events      notify.Publisher
}

func NewService(departments DepartmentRepository, beds BedRepository, events notify.Publisher) *Service {
	return &Service{departments: departments, beds: beds, events: events}
}

// -- Departments --

func (s *Service) CreateDepartment(ctx context.Context, d *Department) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := s.departments.Create(ctx, d); err != nil {
		return err
	}
	s.events.Changed(ctx, "departments")
	return nil
}

func (s *Service) GetDepartment(ctx context.Context, id uuid.UUID) (*Department, error) {
	return s.departments.GetByID(ctx, id)
}

func (s *Service) UpdateDepartment(ctx context.Context, d *Department) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := s.departments.Update(ctx, d); err != nil {
		return err
	}
	s.events.Changed(ctx, "departments")
	return nil
}

func (s *Service) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	if err := s.departments.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Changed(ctx, "departments")
	return nil
}

func (s *Service) ListDepartments(ctx context.Context, limit, offset int) ([]*Department, int, error) {
	return s.departments.List(ctx, limit, offset)
}

// -- Beds --

var validBedTypes = map[string]bool{
	"general": true, "icu": true, "private": true, "semi-private": true, "emergency": true,
}

var validBedStatuses = map[string]bool{
	rules.BedAvailable: true, rules.BedOccupied: true,
	rules.BedReserved: true, rules.BedMaintenance: true,
}

func (s *Service) CreateBed(ctx context.Context, b *Bed) error {
	if b.BedNumber == "" {
		return fmt.Errorf("bed_number is required")
	}
	if b.DepartmentID == uuid.Nil {
		return fmt.Errorf("department_id is required")
	}
	if !validBedTypes[b.BedType] {
		return fmt.Errorf("invalid bed_type: %s", b.BedType)
	}
	if b.Status == "" {
		b.Status = rules.BedAvailable
	}
	if !validBedStatuses[b.Status] {
		return fmt.Errorf("invalid status: %s", b.Status)
	}
	if err := s.beds.Create(ctx, b); err != nil {
		return err
	}
	s.events.Changed(ctx, "beds")
	return nil
}

func (s *Service) GetBed(ctx context.Context, id uuid.UUID) (*Bed, error) {
	return s.beds.GetByID(ctx, id)
}

func (s *Service) UpdateBed(ctx context.Context, b *Bed) error {
	if b.BedType != "" && !validBedTypes[b.BedType] {
		return fmt.Errorf("invalid bed_type: %s", b.BedType)
	}
	if err := s.beds.Update(ctx, b); err != nil {
		return err
	}
	s.events.Changed(ctx, "beds")
	return nil
}

// SetBedStatus applies an administrative status override. A bed holding an
// admitted patient stays occupied until discharge or transfer, and a bed
// cannot be marked occupied without an admission backing it.
func (s *Service) SetBedStatus(ctx context.Context, id uuid.UUID, status string) (*Bed, error) {
	if !validBedStatuses[status] {
		return nil, fmt.Errorf("invalid status: %s", status)
	}

	bed, err := s.beds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	active, err := s.beds.HasActiveAdmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if active && status != rules.BedOccupied {
		return nil, fmt.Errorf("bed has an active admission; discharge or transfer the patient first")
	}
	if !active && status == rules.BedOccupied {
		return nil, fmt.Errorf("bed cannot be occupied without an active admission")
	}

	if err := s.beds.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	bed.Status = status
	s.events.Changed(ctx, "beds")
	return bed, nil
}

func (s *Service) DeleteBed(ctx context.Context, id uuid.UUID) error {
	active, err := s.beds.HasActiveAdmission(ctx, id)
	if err != nil {
		return err
	}
	if active {
		return fmt.Errorf("bed has an active admission")
	}
	if err := s.beds.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Changed(ctx, "beds")
	return nil
}

func (s *Service) SearchBeds(ctx context.Context, params map[string]string, limit, offset int) ([]*Bed, int, error) {
	return s.beds.Search(ctx, params, limit, offset)
}

// Occupancy returns per-department bed usage with computed rates.
func (s *Service) Occupancy(ctx context.Context) ([]*DepartmentOccupancy, error) {
	items, err := s.beds.OccupancyByDepartment(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range items {
		o.OccupancyRate = rules.OccupancyRate(o.OccupiedBeds, o.TotalBeds)
	}
	return items, nil
}
