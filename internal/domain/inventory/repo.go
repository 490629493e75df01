package inventory

import (
	"context"

	"github.com/google/uuid"
)

// CategoryRepository handles category persistence.
type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Category, int, error)
}

// ItemRepository handles item persistence and stock movements.
type ItemRepository interface {
	Create(ctx context.Context, i *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	// LockForUpdate reads an item under a row lock so a stock movement
	// can check and change current_stock atomically.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Item, error)
	Update(ctx context.Context, i *Item) error
	// AdjustStock moves current_stock by delta. The CHECK constraint on
	// the column rejects a move below zero.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Item, int, error)
}

// BatchRepository handles batch persistence.
type BatchRepository interface {
	Create(ctx context.Context, b *Batch) error
	GetByID(ctx context.Context, id uuid.UUID) (*Batch, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*Batch, error)
	// ListActive returns all non-expired, non-recalled batches with their
	// item names, used for the expiry sweep.
	ListActive(ctx context.Context) ([]*Batch, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// TransactionRepository is the append-only stock-movement ledger.
type TransactionRepository interface {
	Create(ctx context.Context, t *Transaction) error
	ListByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*Transaction, int, error)
}
