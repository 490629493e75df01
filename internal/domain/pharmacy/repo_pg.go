package pharmacy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const rxCols = `r.id, r.patient_id, r.doctor_id, r.admission_id, r.opd_queue_id,
	r.status, r.dispensed_at, r.dispensed_by, r.created_at, p.full_name, d.full_name`

const rxJoins = ` FROM prescriptions r
	JOIN patients p ON p.id = r.patient_id
	JOIN profiles d ON d.id = r.doctor_id`

func (r *repoPG) scanPrescription(row pgx.Row) (*Prescription, error) {
	var rx Prescription
	err := row.Scan(&rx.ID, &rx.PatientID, &rx.DoctorID, &rx.AdmissionID, &rx.OPDQueueID,
		&rx.Status, &rx.DispensedAt, &rx.DispensedBy, &rx.CreatedAt, &rx.PatientName, &rx.DoctorName)
	return &rx, err
}

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescriptions (id, patient_id, doctor_id, admission_id, opd_queue_id, status)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, p.PatientID, p.DoctorID, p.AdmissionID, p.OPDQueueID, p.Status)
	return err
}

func (r *repoPG) CreateItem(ctx context.Context, item *PrescriptionItem) error {
	item.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescription_items (id, prescription_id, item_id, dosage, frequency, duration, quantity, instructions)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		item.ID, item.PrescriptionID, item.ItemID, item.Dosage, item.Frequency,
		item.Duration, item.Quantity, item.Instructions)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return r.scanPrescription(r.conn(ctx).QueryRow(ctx,
		`SELECT `+rxCols+rxJoins+` WHERE r.id = $1`, id))
}

func (r *repoPG) GetItems(ctx context.Context, prescriptionID uuid.UUID) ([]*PrescriptionItem, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT pi.id, pi.prescription_id, pi.item_id, pi.dosage, pi.frequency,
			pi.duration, pi.quantity, pi.instructions, pi.created_at, i.name
		FROM prescription_items pi
		JOIN inventory_items i ON i.id = pi.item_id
		WHERE pi.prescription_id = $1
		ORDER BY pi.created_at ASC`, prescriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*PrescriptionItem
	for rows.Next() {
		var item PrescriptionItem
		if err := rows.Scan(&item.ID, &item.PrescriptionID, &item.ItemID, &item.Dosage,
			&item.Frequency, &item.Duration, &item.Quantity, &item.Instructions,
			&item.CreatedAt, &item.ItemName); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, p *Prescription) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescriptions SET status=$2, dispensed_at=$3, dispensed_by=$4
		WHERE id = $1`,
		p.ID, p.Status, p.DispensedAt, p.DispensedBy)
	return err
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Prescription, int, error) {
	query := `SELECT ` + rxCols + rxJoins + ` WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM prescriptions r WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["patient_id"]; ok {
		query += fmt.Sprintf(` AND r.patient_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND r.patient_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["doctor_id"]; ok {
		query += fmt.Sprintf(` AND r.doctor_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND r.doctor_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND r.status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND r.status = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		rx, err := r.scanPrescription(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rx)
	}
	return items, total, nil
}

// =========== Stock Gateway ===========

type stockGatewayPG struct{ pool *pgxpool.Pool }

func NewStockGatewayPG(pool *pgxpool.Pool) StockGateway { return &stockGatewayPG{pool: pool} }

func (g *stockGatewayPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return g.pool
}

func (g *stockGatewayPG) LockItemStock(ctx context.Context, itemID uuid.UUID) (int, error) {
	var current int
	err := g.conn(ctx).QueryRow(ctx,
		`SELECT current_stock FROM inventory_items WHERE id = $1 FOR UPDATE`, itemID).Scan(&current)
	return current, err
}

func (g *stockGatewayPG) DecrementStock(ctx context.Context, itemID uuid.UUID, qty int) error {
	tag, err := g.conn(ctx).Exec(ctx,
		`UPDATE inventory_items SET current_stock = current_stock - $2, updated_at=NOW() WHERE id = $1`,
		itemID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (g *stockGatewayPG) RecordDispensation(ctx context.Context, itemID uuid.UUID, qty int, prescriptionID uuid.UUID, performedBy *uuid.UUID) error {
	refType := "prescription"
	_, err := g.conn(ctx).Exec(ctx, `
		INSERT INTO inventory_transactions (id, item_id, transaction_type, quantity, reference_id, reference_type, performed_by)
		VALUES ($1,$2,'dispensation',$3,$4,$5,$6)`,
		uuid.New(), itemID, -qty, prescriptionID, refType, performedBy)
	return err
}
