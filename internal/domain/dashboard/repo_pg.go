package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) BedCounts(ctx context.Context) (total, occupied, available int, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'occupied'),
			COUNT(*) FILTER (WHERE status = 'available')
		FROM beds`).Scan(&total, &occupied, &available)
	return
}

func (r *repoPG) OccupancyByDepartment(ctx context.Context) ([]DepartmentOccupancy, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT d.id, d.name,
			COUNT(b.id),
			COUNT(b.id) FILTER (WHERE b.status = 'occupied')
		FROM departments d
		LEFT JOIN beds b ON b.department_id = d.id
		GROUP BY d.id, d.name
		ORDER BY d.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DepartmentOccupancy
	for rows.Next() {
		var o DepartmentOccupancy
		if err := rows.Scan(&o.DepartmentID, &o.DepartmentName, &o.TotalBeds, &o.OccupiedBeds); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *repoPG) QueueCountsForDay(ctx context.Context, day time.Time) (QueueSummary, error) {
	var q QueueSummary
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = 'waiting'),
			COUNT(*) FILTER (WHERE status = 'in_consultation'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'cancelled')
		FROM opd_queues WHERE visit_date = $1`, day).
		Scan(&q.Waiting, &q.InConsultation, &q.Completed, &q.Cancelled)
	return q, err
}

func (r *repoPG) AdmissionCounts(ctx context.Context, day time.Time) (AdmissionSummary, error) {
	var a AdmissionSummary
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = 'admitted'),
			COUNT(*) FILTER (WHERE status = 'discharged' AND discharge_date::date = $1::date)
		FROM admissions`, day).
		Scan(&a.Active, &a.DischargedToday)
	return a, err
}

func (r *repoPG) InventoryCounts(ctx context.Context) (InventorySummary, error) {
	var inv InventorySummary
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE current_stock >= minimum_stock AND current_stock < 2 * minimum_stock),
			COUNT(*) FILTER (WHERE current_stock < minimum_stock)
		FROM inventory_items`).
		Scan(&inv.LowStockItems, &inv.CriticalStockItems)
	if err != nil {
		return inv, err
	}
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM inventory_batches b
		JOIN inventory_items i ON i.id = b.item_id
		WHERE b.status = 'active'
		  AND b.expiry_date >= NOW()
		  AND b.expiry_date <= NOW() + (i.expiry_alert_days || ' days')::interval`).
		Scan(&inv.ExpiringBatches)
	return inv, err
}

func (r *repoPG) PrescriptionCounts(ctx context.Context, day time.Time) (PrescriptionSummary, error) {
	var p PrescriptionSummary
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'dispensed' AND dispensed_at::date = $1::date)
		FROM prescriptions`, day).
		Scan(&p.Pending, &p.DispensedToday)
	return p, err
}

func (r *repoPG) AppointmentCounts(ctx context.Context, day time.Time) (AppointmentSummary, error) {
	var a AppointmentSummary
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE scheduled_at::date = $1::date AND status NOT IN ('cancelled', 'no_show')),
			COUNT(*) FILTER (WHERE scheduled_at::date = $1::date AND status = 'completed')
		FROM appointments`, day).
		Scan(&a.ScheduledToday, &a.CompletedToday)
	return a, err
}
