package inventory

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
	categories   CategoryRepository
	items        ItemRepository
	batches      BatchRepository
	transactions TransactionRepository
	runner       db.Runner
	events       notify.Publisher
	now          func() time.Time
}

func NewService(categories CategoryRepository, items ItemRepository, batches BatchRepository,
	transactions TransactionRepository, runner db.Runner, events notify.Publisher) *Service {
	return &Service{
		categories:   categories,
		items:        items,
		batches:      batches,
		transactions: transactions,
		runner:       runner,
		events:       events,
		now:          time.Now,
	}
}

// -- Categories --

func (s *Service) CreateCategory(ctx context.Context, c *Category) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return err
	}
	s.events.Changed(ctx, "inventory_categories")
	return nil
}

func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *Service) UpdateCategory(ctx context.Context, c *Category) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := s.categories.Update(ctx, c); err != nil {
		return err
	}
	s.events.Changed(ctx, "inventory_categories")
	return nil
}

func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Changed(ctx, "inventory_categories")
	return nil
}

func (s *Service) ListCategories(ctx context.Context, limit, offset int) ([]*Category, int, error) {
	return s.categories.List(ctx, limit, offset)
}

// -- Items --

var validItemTypes = map[string]bool{"medicine": true, "consumable": true, "equipment": true}

func (s *Service) CreateItem(ctx context.Context, i *Item) error {
	if i.Name == "" {
		return fmt.Errorf("name is required")
	}
	if i.CategoryID == uuid.Nil {
		return fmt.Errorf("category_id is required")
	}
	if !validItemTypes[i.ItemType] {
		return fmt.Errorf("invalid item_type: %s", i.ItemType)
	}
	if i.Unit == "" {
		return fmt.Errorf("unit is required")
	}
	if i.CurrentStock < 0 || i.MinimumStock < 0 {
		return fmt.Errorf("stock levels cannot be negative")
	}
	if i.ExpiryAlertDays == 0 {
		i.ExpiryAlertDays = 30
	}
	if err := s.items.Create(ctx, i); err != nil {
		return err
	}
	i.StockStatus = rules.StockStatus(i.CurrentStock, i.MinimumStock)
	s.events.Changed(ctx, "inventory_items")
	return nil
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	i, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	i.StockStatus = rules.StockStatus(i.CurrentStock, i.MinimumStock)
	return i, nil
}

func (s *Service) UpdateItem(ctx context.Context, i *Item) error {
	if i.ItemType != "" && !validItemTypes[i.ItemType] {
		return fmt.Errorf("invalid item_type: %s", i.ItemType)
	}
	if i.MinimumStock < 0 {
		return fmt.Errorf("minimum_stock cannot be negative")
	}
	if err := s.items.Update(ctx, i); err != nil {
		return err
	}
	s.events.Changed(ctx, "inventory_items")
	return nil
}

func (s *Service) SearchItems(ctx context.Context, params map[string]string, limit, offset int) ([]*Item, int, error) {
	items, total, err := s.items.Search(ctx, params, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, i := range items {
		i.StockStatus = rules.StockStatus(i.CurrentStock, i.MinimumStock)
	}
	return items, total, nil
}

// -- Batches and stock movements --

// ReceiveBatch records an incoming delivery: the batch row, the stock bump
// and the purchase ledger entry commit as one transaction.
func (s *Service) ReceiveBatch(ctx context.Context, b *Batch) error {
	if b.ItemID == uuid.Nil {
		return fmt.Errorf("item_id is required")
	}
	if b.BatchNumber == "" {
		return fmt.Errorf("batch_number is required")
	}
	if b.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if b.ExpiryDate != nil && !b.ExpiryDate.After(s.now()) {
		return fmt.Errorf("batch is already expired")
	}
	b.Status = "active"

	performedBy := performerFromContext(ctx)
	err := s.runner.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.items.LockForUpdate(ctx, b.ItemID); err != nil {
			return err
		}
		if err := s.batches.Create(ctx, b); err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("batch number already recorded for item")
			}
			return err
		}
		if err := s.items.AdjustStock(ctx, b.ItemID, b.Quantity); err != nil {
			return err
		}
		return s.transactions.Create(ctx, &Transaction{
			ItemID:          b.ItemID,
			BatchID:         &b.ID,
			TransactionType: "purchase",
			Quantity:        b.Quantity,
			UnitPrice:       b.PurchasePrice,
			PerformedBy:     performedBy,
		})
	})
	if err != nil {
		return err
	}
	s.events.Changed(ctx, "inventory_batches")
	s.events.Changed(ctx, "inventory_items")
	return nil
}

func (s *Service) GetBatch(ctx context.Context, id uuid.UUID) (*Batch, error) {
	return s.batches.GetByID(ctx, id)
}

func (s *Service) ListBatchesByItem(ctx context.Context, itemID uuid.UUID) ([]*Batch, error) {
	return s.batches.ListByItem(ctx, itemID)
}

// ExpiringBatches returns active batches whose expiry falls inside their
// item's alert window. Already-expired batches are excluded.
func (s *Service) ExpiringBatches(ctx context.Context) ([]*Batch, error) {
	batches, err := s.batches.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var expiring []*Batch
	for _, b := range batches {
		if b.ExpiryDate == nil {
			continue
		}
		item, err := s.items.GetByID(ctx, b.ItemID)
		if err != nil {
			return nil, err
		}
		if rules.IsExpiringSoon(*b.ExpiryDate, now, item.ExpiryAlertDays) {
			expiring = append(expiring, b)
		}
	}
	return expiring, nil
}

// MarkBatchExpired flags a batch and removes its remaining quantity from
// stock as wastage.
func (s *Service) MarkBatchExpired(ctx context.Context, id uuid.UUID) error {
	performedBy := performerFromContext(ctx)
	err := s.runner.InTx(ctx, func(ctx context.Context) error {
		b, err := s.batches.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b.Status != "active" {
			return fmt.Errorf("batch is %s", b.Status)
		}
		if _, err := s.items.LockForUpdate(ctx, b.ItemID); err != nil {
			return err
		}
		if err := s.batches.UpdateStatus(ctx, id, "expired"); err != nil {
			return err
		}
		if b.Quantity > 0 {
			if err := s.items.AdjustStock(ctx, b.ItemID, -b.Quantity); err != nil {
				return err
			}
			note := "batch expired"
			return s.transactions.Create(ctx, &Transaction{
				ItemID:          b.ItemID,
				BatchID:         &b.ID,
				TransactionType: "wastage",
				Quantity:        -b.Quantity,
				PerformedBy:     performedBy,
				Notes:           &note,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.events.Changed(ctx, "inventory_batches")
	s.events.Changed(ctx, "inventory_items")
	return nil
}

var validAdjustmentTypes = map[string]bool{"adjustment": true, "wastage": true, "return": true}

// Adjust applies a manual stock movement. Negative movements are checked
// against current stock under a row lock so the count never goes below zero.
func (s *Service) Adjust(ctx context.Context, req AdjustmentRequest) (*Item, error) {
	if req.ItemID == uuid.Nil {
		return nil, fmt.Errorf("item_id is required")
	}
	if !validAdjustmentTypes[req.TransactionType] {
		return nil, fmt.Errorf("invalid transaction_type: %s", req.TransactionType)
	}
	if req.Quantity == 0 {
		return nil, fmt.Errorf("quantity cannot be zero")
	}
	if req.TransactionType == "wastage" && req.Quantity > 0 {
		req.Quantity = -req.Quantity
	}

	performedBy := performerFromContext(ctx)
	var result *Item
	err := s.runner.InTx(ctx, func(ctx context.Context) error {
		item, err := s.items.LockForUpdate(ctx, req.ItemID)
		if err != nil {
			return err
		}
		if item.CurrentStock+req.Quantity < 0 {
			return fmt.Errorf("insufficient stock: have %d, movement %d", item.CurrentStock, req.Quantity)
		}
		if err := s.items.AdjustStock(ctx, req.ItemID, req.Quantity); err != nil {
			return err
		}
		if err := s.transactions.Create(ctx, &Transaction{
			ItemID:          req.ItemID,
			BatchID:         req.BatchID,
			TransactionType: req.TransactionType,
			Quantity:        req.Quantity,
			PerformedBy:     performedBy,
			Notes:           req.Notes,
		}); err != nil {
			return err
		}
		item.CurrentStock += req.Quantity
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.StockStatus = rules.StockStatus(result.CurrentStock, result.MinimumStock)
	s.events.Changed(ctx, "inventory_items")
	return result, nil
}

func (s *Service) ListTransactions(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*Transaction, int, error) {
	return s.transactions.ListByItem(ctx, itemID, limit, offset)
}

// performerFromContext resolves the acting staff member, when the request
// carries an authenticated user with a UUID subject.
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
