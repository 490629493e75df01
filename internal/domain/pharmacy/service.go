package pharmacy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/rules"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/notify"
)

type Service struct {
	prescriptions Repository
	stock         StockGateway
	runner        db.Runner
	events        notify.Publisher
	now           func() time.Time
}

func NewService(prescriptions Repository, stock StockGateway, runner db.Runner, events notify.Publisher) *Service {
	return &Service{prescriptions: prescriptions, stock: stock, runner: runner, events: events, now: time.Now}
}

// Create stores a prescription with its line items. Stock is untouched
// until the pharmacist dispenses.
func (s *Service) Create(ctx context.Context, p *Prescription) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if len(p.Items) == 0 {
		return fmt.Errorf("prescription needs at least one item")
	}
	for i, item := range p.Items {
		if item.ItemID == uuid.Nil {
			return fmt.Errorf("item %d: item_id is required", i+1)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive", i+1)
		}
		if item.Dosage == "" || item.Frequency == "" || item.Duration == "" {
			return fmt.Errorf("item %d: dosage, frequency and duration are required", i+1)
		}
	}
	p.Status = rules.PrescriptionPending

	err := s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.prescriptions.Create(ctx, p); err != nil {
			return err
		}
		for _, item := range p.Items {
			item.PrescriptionID = p.ID
			if err := s.prescriptions.CreateItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.events.Changed(ctx, "prescriptions")
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.prescriptions.GetItems(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return p, nil
}

// Dispense hands the drugs over: every line item's stock is checked and
// decremented under row locks, dispensation ledger rows are written, and
// the prescription flips to dispensed. Any shortfall rolls the whole
// operation back, leaving stock and status untouched.
func (s *Service) Dispense(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	performedBy := performerFromContext(ctx)
	var result *Prescription
	err := s.runner.InTx(ctx, func(ctx context.Context) error {
		p, err := s.prescriptions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !rules.PrescriptionLifecycle.Can(p.Status, rules.PrescriptionDispensed) {
			return fmt.Errorf("cannot dispense prescription in status %s", p.Status)
		}
		items, err := s.prescriptions.GetItems(ctx, id)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("prescription has no items")
		}

		for _, item := range items {
			current, err := s.stock.LockItemStock(ctx, item.ItemID)
			if err != nil {
				return err
			}
			if current < item.Quantity {
				return fmt.Errorf("insufficient stock for %s: have %d, need %d",
					item.ItemName, current, item.Quantity)
			}
			if err := s.stock.DecrementStock(ctx, item.ItemID, item.Quantity); err != nil {
				return err
			}
			if err := s.stock.RecordDispensation(ctx, item.ItemID, item.Quantity, p.ID, performedBy); err != nil {
				return err
			}
		}

		now := s.now()
		p.Status = rules.PrescriptionDispensed
		p.DispensedAt = &now
		p.DispensedBy = performedBy
		if err := s.prescriptions.UpdateStatus(ctx, p); err != nil {
			return err
		}
		p.Items = items
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.Changed(ctx, "prescriptions")
	s.events.Changed(ctx, "inventory_items")
	return result, nil
}

// Cancel voids a pending prescription. Stock never moved, so nothing to
// restore.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rules.PrescriptionLifecycle.Can(p.Status, rules.PrescriptionCancelled) {
		return nil, fmt.Errorf("cannot cancel prescription in status %s", p.Status)
	}
	p.Status = rules.PrescriptionCancelled
	if err := s.prescriptions.UpdateStatus(ctx, p); err != nil {
		return nil, err
	}
	s.events.Changed(ctx, "prescriptions")
	return p, nil
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.Search(ctx, params, limit, offset)
}

func performerFromContext(ctx context.Context) *uuid.UUID {
	uid := auth.UserIDFromContext(ctx)
	if uid == "" {
		return nil
	}
	id, err := uuid.Parse(uid)
	if err != nil {
		return nil
	}
	return &id
}
