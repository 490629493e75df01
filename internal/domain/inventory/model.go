package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Category maps to the inventory_categories table.
type Category struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Item maps to the inventory_items table. CurrentStock is the authoritative
// on-hand count; every stock movement writes it together with a transaction
// row in one database transaction.
type Item struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	CategoryID      uuid.UUID `db:"category_id" json:"category_id"`
	ItemType        string    `db:"item_type" json:"item_type"`
	Description     *string   `db:"description" json:"description,omitempty"`
	Unit            string    `db:"unit" json:"unit"`
	Manufacturer    *string   `db:"manufacturer" json:"manufacturer,omitempty"`
	CurrentStock    int       `db:"current_stock" json:"current_stock"`
	MinimumStock    int       `db:"minimum_stock" json:"minimum_stock"`
	MaximumStock    *int      `db:"maximum_stock" json:"maximum_stock,omitempty"`
	UnitPrice       *float64  `db:"unit_price" json:"unit_price,omitempty"`
	ExpiryAlertDays int       `db:"expiry_alert_days" json:"expiry_alert_days"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`

	// Derived from current vs minimum stock, never stored.
	StockStatus string `db:"-" json:"stock_status"`
}

// Batch maps to the inventory_batches table.
type Batch struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	ItemID            uuid.UUID  `db:"item_id" json:"item_id"`
	BatchNumber       string     `db:"batch_number" json:"batch_number"`
	Quantity          int        `db:"quantity" json:"quantity"`
	ManufacturingDate *time.Time `db:"manufacturing_date" json:"manufacturing_date,omitempty"`
	ExpiryDate        *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	PurchasePrice     *float64   `db:"purchase_price" json:"purchase_price,omitempty"`
	Supplier          *string    `db:"supplier" json:"supplier,omitempty"`
	Status            string     `db:"status" json:"status"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`

	ItemName string `db:"-" json:"item_name,omitempty"`
}

// Transaction maps to the inventory_transactions table: the append-only
// ledger of stock movements.
type Transaction struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	ItemID          uuid.UUID  `db:"item_id" json:"item_id"`
	BatchID         *uuid.UUID `db:"batch_id" json:"batch_id,omitempty"`
	TransactionType string     `db:"transaction_type" json:"transaction_type"`
	Quantity        int        `db:"quantity" json:"quantity"`
	UnitPrice       *float64   `db:"unit_price" json:"unit_price,omitempty"`
	ReferenceID     *uuid.UUID `db:"reference_id" json:"reference_id,omitempty"`
	ReferenceType   *string    `db:"reference_type" json:"reference_type,omitempty"`
	PerformedBy     *uuid.UUID `db:"performed_by" json:"performed_by,omitempty"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// AdjustmentRequest applies a manual stock correction, wastage or return.
type AdjustmentRequest struct {
	ItemID          uuid.UUID  `json:"item_id"`
	TransactionType string     `json:"transaction_type"`
	Quantity        int        `json:"quantity"`
	BatchID         *uuid.UUID `json:"batch_id,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}
