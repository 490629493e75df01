package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

// =========== Category Repository ===========

type categoryRepoPG struct{ pool *pgxpool.Pool }

func NewCategoryRepoPG(pool *pgxpool.Pool) CategoryRepository { return &categoryRepoPG{pool: pool} }

func (r *categoryRepoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const categoryCols = `id, name, description, created_at`

func (r *categoryRepoPG) scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	return &c, err
}

func (r *categoryRepoPG) Create(ctx context.Context, c *Category) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO inventory_categories (id, name, description) VALUES ($1,$2,$3)`,
		c.ID, c.Name, c.Description)
	return err
}

func (r *categoryRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	return r.scanCategory(r.conn(ctx).QueryRow(ctx, `SELECT `+categoryCols+` FROM inventory_categories WHERE id = $1`, id))
}

func (r *categoryRepoPG) Update(ctx context.Context, c *Category) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE inventory_categories SET name=$2, description=$3 WHERE id = $1`,
		c.ID, c.Name, c.Description)
	return err
}

func (r *categoryRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM inventory_categories WHERE id = $1`, id)
	return err
}

func (r *categoryRepoPG) List(ctx context.Context, limit, offset int) ([]*Category, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM inventory_categories`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+categoryCols+` FROM inventory_categories ORDER BY name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Category
	for rows.Next() {
		c, err := r.scanCategory(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, nil
}

// =========== Item Repository ===========

type itemRepoPG struct{ pool *pgxpool.Pool }

func NewItemRepoPG(pool *pgxpool.Pool) ItemRepository { return &itemRepoPG{pool: pool} }

func (r *itemRepoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const itemCols = `id, name, category_id, item_type, description, unit, manufacturer,
	current_stock, minimum_stock, maximum_stock, unit_price, expiry_alert_days,
	created_at, updated_at`

func (r *itemRepoPG) scanItem(row pgx.Row) (*Item, error) {
	var i Item
	err := row.Scan(&i.ID, &i.Name, &i.CategoryID, &i.ItemType, &i.Description, &i.Unit,
		&i.Manufacturer, &i.CurrentStock, &i.MinimumStock, &i.MaximumStock, &i.UnitPrice,
		&i.ExpiryAlertDays, &i.CreatedAt, &i.UpdatedAt)
	return &i, err
}

func (r *itemRepoPG) Create(ctx context.Context, i *Item) error {
	i.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO inventory_items (id, name, category_id, item_type, description, unit,
			manufacturer, current_stock, minimum_stock, maximum_stock, unit_price, expiry_alert_days)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		i.ID, i.Name, i.CategoryID, i.ItemType, i.Description, i.Unit,
		i.Manufacturer, i.CurrentStock, i.MinimumStock, i.MaximumStock, i.UnitPrice, i.ExpiryAlertDays)
	return err
}

func (r *itemRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	return r.scanItem(r.conn(ctx).QueryRow(ctx, `SELECT `+itemCols+` FROM inventory_items WHERE id = $1`, id))
}

func (r *itemRepoPG) LockForUpdate(ctx context.Context, id uuid.UUID) (*Item, error) {
	return r.scanItem(r.conn(ctx).QueryRow(ctx, `SELECT `+itemCols+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id))
}

func (r *itemRepoPG) Update(ctx context.Context, i *Item) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE inventory_items SET name=$2, category_id=$3, item_type=$4, description=$5,
			unit=$6, manufacturer=$7, minimum_stock=$8, maximum_stock=$9, unit_price=$10,
			expiry_alert_days=$11, updated_at=NOW()
		WHERE id = $1`,
		i.ID, i.Name, i.CategoryID, i.ItemType, i.Description,
		i.Unit, i.Manufacturer, i.MinimumStock, i.MaximumStock, i.UnitPrice, i.ExpiryAlertDays)
	return err
}

func (r *itemRepoPG) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE inventory_items SET current_stock = current_stock + $2, updated_at=NOW() WHERE id = $1`,
		id, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *itemRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Item, int, error) {
	query := `SELECT ` + itemCols + ` FROM inventory_items WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM inventory_items WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["category_id"]; ok {
		query += fmt.Sprintf(` AND category_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND category_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["item_type"]; ok {
		query += fmt.Sprintf(` AND item_type = $%d`, idx)
		countQuery += fmt.Sprintf(` AND item_type = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["name"]; ok {
		query += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		countQuery += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		args = append(args, "%"+p+"%")
		idx++
	}
	// Stock health filters lean on the same thresholds the service derives
	// statuses from.
	if p, ok := params["status"]; ok {
		switch p {
		case "critical":
			query += ` AND current_stock < minimum_stock`
			countQuery += ` AND current_stock < minimum_stock`
		case "low":
			query += ` AND current_stock >= minimum_stock AND current_stock < 2 * minimum_stock`
			countQuery += ` AND current_stock >= minimum_stock AND current_stock < 2 * minimum_stock`
		case "healthy":
			query += ` AND current_stock >= 2 * minimum_stock`
			countQuery += ` AND current_stock >= 2 * minimum_stock`
		}
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		i, err := r.scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, i)
	}
	return items, total, nil
}

// =========== Batch Repository ===========

type batchRepoPG struct{ pool *pgxpool.Pool }

func NewBatchRepoPG(pool *pgxpool.Pool) BatchRepository { return &batchRepoPG{pool: pool} }

func (r *batchRepoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const batchCols = `b.id, b.item_id, b.batch_number, b.quantity, b.manufacturing_date,
	b.expiry_date, b.purchase_price, b.supplier, b.status, b.created_at, i.name`

func (r *batchRepoPG) scanBatch(row pgx.Row) (*Batch, error) {
	var b Batch
	err := row.Scan(&b.ID, &b.ItemID, &b.BatchNumber, &b.Quantity, &b.ManufacturingDate,
		&b.ExpiryDate, &b.PurchasePrice, &b.Supplier, &b.Status, &b.CreatedAt, &b.ItemName)
	return &b, err
}

func (r *batchRepoPG) Create(ctx context.Context, b *Batch) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO inventory_batches (id, item_id, batch_number, quantity, manufacturing_date,
			expiry_date, purchase_price, supplier, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		b.ID, b.ItemID, b.BatchNumber, b.Quantity, b.ManufacturingDate,
		b.ExpiryDate, b.PurchasePrice, b.Supplier, b.Status)
	return err
}

func (r *batchRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Batch, error) {
	return r.scanBatch(r.conn(ctx).QueryRow(ctx,
		`SELECT `+batchCols+` FROM inventory_batches b JOIN inventory_items i ON i.id = b.item_id WHERE b.id = $1`, id))
}

func (r *batchRepoPG) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*Batch, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+batchCols+` FROM inventory_batches b JOIN inventory_items i ON i.id = b.item_id
		 WHERE b.item_id = $1 ORDER BY b.expiry_date ASC NULLS LAST`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Batch
	for rows.Next() {
		b, err := r.scanBatch(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, nil
}

func (r *batchRepoPG) ListActive(ctx context.Context) ([]*Batch, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+batchCols+` FROM inventory_batches b JOIN inventory_items i ON i.id = b.item_id
		 WHERE b.status = 'active' AND b.expiry_date IS NOT NULL ORDER BY b.expiry_date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Batch
	for rows.Next() {
		b, err := r.scanBatch(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, nil
}

func (r *batchRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE inventory_batches SET status=$2 WHERE id = $1`, id, status)
	return err
}

// =========== Transaction Repository ===========

type transactionRepoPG struct{ pool *pgxpool.Pool }

func NewTransactionRepoPG(pool *pgxpool.Pool) TransactionRepository {
	return &transactionRepoPG{pool: pool}
}

func (r *transactionRepoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const txnCols = `id, item_id, batch_id, transaction_type, quantity, unit_price,
	reference_id, reference_type, performed_by, notes, created_at`

func (r *transactionRepoPG) Create(ctx context.Context, t *Transaction) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO inventory_transactions (id, item_id, batch_id, transaction_type, quantity,
			unit_price, reference_id, reference_type, performed_by, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		t.ID, t.ItemID, t.BatchID, t.TransactionType, t.Quantity,
		t.UnitPrice, t.ReferenceID, t.ReferenceType, t.PerformedBy, t.Notes)
	return err
}

func (r *transactionRepoPG) ListByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*Transaction, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM inventory_transactions WHERE item_id = $1`, itemID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+txnCols+` FROM inventory_transactions WHERE item_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		itemID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.ItemID, &t.BatchID, &t.TransactionType, &t.Quantity,
			&t.UnitPrice, &t.ReferenceID, &t.ReferenceType, &t.PerformedBy, &t.Notes, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &t)
	}
	return items, total, nil
}
