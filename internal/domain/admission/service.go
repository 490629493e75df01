package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/rules"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/notify"
)

type Service struct {
	admissions Repository
	beds       BedGateway
	runner     db.Runner
	events     notify.Publisher
	now        func() time.Time
}

func NewService(admissions Repository, beds BedGateway, runner db.Runner, events notify.Publisher) *Service {
	return &Service{admissions: admissions, beds: beds, runner: runner, events: events, now: time.Now}
}

var validAdmissionTypes = map[string]bool{"emergency": true, "planned": true, "transfer": true}

// Admit places a patient in a bed. The bed row is locked for the duration of
// the transaction so two admissions cannot claim it; the admission insert
// and the bed flip to occupied commit together or not at all.
func (s *Service) Admit(ctx context.Context, a *Admission) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.BedID == uuid.Nil {
		return fmt.Errorf("bed_id is required")
	}
	if a.AdmittingDoctorID == uuid.Nil {
		return fmt.Errorf("admitting_doctor_id is required")
	}
	if a.AdmissionType == "" {
		a.AdmissionType = "planned"
	}
	if !validAdmissionTypes[a.AdmissionType] {
		return fmt.Errorf("invalid admission_type: %s", a.AdmissionType)
	}

	err := s.runner.InTx(ctx, func(ctx context.Context) error {
		bed, err := s.beds.Lock(ctx, a.BedID)
		if err != nil {
			if db.IsNotFound(err) {
				return fmt.Errorf("bed not found")
			}
			return err
		}
		if bed.Status != rules.BedAvailable && bed.Status != rules.BedReserved {
			return fmt.Errorf("bed is %s", bed.Status)
		}

		a.DepartmentID = bed.DepartmentID
		a.Status = rules.AdmissionAdmitted
		a.AdmissionDate = s.now()
		if err := s.admissions.Create(ctx, a); err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("bed already has an active admission")
			}
			return err
		}
		return s.beds.SetStatus(ctx, a.BedID, rules.BedOccupied)
	})
	if err != nil {
		return err
	}
	a.StayDurationDays = rules.StayDurationDays(a.AdmissionDate, s.now())
	s.events.Changed(ctx, "admissions")
	s.events.Changed(ctx, "beds")
	return nil
}

// Discharge closes an admission and frees its bed in the same transaction.
func (s *Service) Discharge(ctx context.Context, id uuid.UUID, req DischargeRequest) (*Admission, error) {
	var result *Admission
	err := s.runner.InTx(ctx, func(ctx context.Context) error {
		a, err := s.admissions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !rules.AdmissionLifecycle.Can(a.Status, rules.AdmissionDischarged) {
			return fmt.Errorf("cannot discharge admission in status %s", a.Status)
		}

		now := s.now()
		a.Status = rules.AdmissionDischarged
		a.DischargeDate = &now
		if req.DischargeSummary != nil {
			a.DischargeSummary = req.DischargeSummary
		}
		if req.TotalCost != nil {
			a.TotalCost = req.TotalCost
		}
		if err := s.admissions.Update(ctx, a); err != nil {
			return err
		}

		next := rules.BedAvailable
		if req.SendBedToMaintenance {
			next = rules.BedMaintenance
		}
		if err := s.beds.SetStatus(ctx, a.BedID, next); err != nil {
			return err
		}
		result = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.applyStay(result)
	s.events.Changed(ctx, "admissions")
	s.events.Changed(ctx, "beds")
	return result, nil
}

// Transfer closes an admission for a patient moving to another ward or
// facility and releases the bed. The receiving side opens a fresh admission.
func (s *Service) Transfer(ctx context.Context, id uuid.UUID) (*Admission, error) {
	var result *Admission
	err := s.runner.InTx(ctx, func(ctx context.Context) error {
		a, err := s.admissions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !rules.AdmissionLifecycle.Can(a.Status, rules.AdmissionTransferred) {
			return fmt.Errorf("cannot transfer admission in status %s", a.Status)
		}

		now := s.now()
		a.Status = rules.AdmissionTransferred
		a.DischargeDate = &now
		if err := s.admissions.Update(ctx, a); err != nil {
			return err
		}
		if err := s.beds.SetStatus(ctx, a.BedID, rules.BedAvailable); err != nil {
			return err
		}
		result = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.applyStay(result)
	s.events.Changed(ctx, "admissions")
	s.events.Changed(ctx, "beds")
	return result, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Admission, error) {
	a, err := s.admissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.applyStay(a)
	return a, nil
}

// UpdateClinicalNotes amends diagnosis and treatment plan on an active
// admission without touching its lifecycle.
func (s *Service) UpdateClinicalNotes(ctx context.Context, id uuid.UUID, diagnosis, plan *string) (*Admission, error) {
	a, err := s.admissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != rules.AdmissionAdmitted {
		return nil, fmt.Errorf("admission is %s", a.Status)
	}
	if diagnosis != nil {
		a.Diagnosis = diagnosis
	}
	if plan != nil {
		a.TreatmentPlan = plan
	}
	if err := s.admissions.Update(ctx, a); err != nil {
		return nil, err
	}
	s.applyStay(a)
	s.events.Changed(ctx, "admissions")
	return a, nil
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Admission, int, error) {
	items, total, err := s.admissions.Search(ctx, params, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, a := range items {
		s.applyStay(a)
	}
	return items, total, nil
}

// applyStay computes the stay length: up to discharge for closed
// admissions, up to now for active ones.
func (s *Service) applyStay(a *Admission) {
	until := s.now()
	if a.DischargeDate != nil {
		until = *a.DischargeDate
	}
	a.StayDurationDays = rules.StayDurationDays(a.AdmissionDate, until)
}
