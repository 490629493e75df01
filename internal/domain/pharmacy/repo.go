package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

// Repository handles prescription persistence. Items ride along with their
// prescription; the cascade on the table removes them with it.
type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	CreateItem(ctx context.Context, item *PrescriptionItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	GetItems(ctx context.Context, prescriptionID uuid.UUID) ([]*PrescriptionItem, error)
	UpdateStatus(ctx context.Context, p *Prescription) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Prescription, int, error)
}

// StockGateway is the slice of inventory the dispensing workflow needs:
// check-and-decrement under a row lock, plus the ledger write.
type StockGateway interface {
	LockItemStock(ctx context.Context, itemID uuid.UUID) (current int, err error)
	DecrementStock(ctx context.Context, itemID uuid.UUID, qty int) error
	RecordDispensation(ctx context.Context, itemID uuid.UUID, qty int, prescriptionID uuid.UUID, performedBy *uuid.UUID) error
}
