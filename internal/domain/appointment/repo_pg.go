package appointment

import (
	"context"
	"fmt"
	"time"

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

const apptCols = `a.id, a.patient_id, a.doctor_id, a.department_id, a.scheduled_at,
	a.duration_minutes, a.status, a.reason, a.notes, a.created_at, a.updated_at,
	p.full_name, dr.full_name, d.name`

const apptJoins = ` FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN profiles dr ON dr.id = a.doctor_id
	JOIN departments d ON d.id = a.department_id`

func (r *repoPG) scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.DepartmentID, &a.ScheduledAt,
		&a.DurationMinutes, &a.Status, &a.Reason, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
		&a.PatientName, &a.DoctorName, &a.DepartmentName)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, department_id, scheduled_at, duration_minutes, status, reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.PatientID, a.DoctorID, a.DepartmentID, a.ScheduledAt,
		a.DurationMinutes, a.Status, a.Reason)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+apptJoins+` WHERE a.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET scheduled_at=$2, duration_minutes=$3, status=$4, reason=$5, notes=$6, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.ScheduledAt, a.DurationMinutes, a.Status, a.Reason, a.Notes)
	return err
}

func (r *repoPG) DoctorOverlap(ctx context.Context, doctorID uuid.UUID, start, end time.Time, exclude uuid.UUID) (bool, error) {
	var overlap bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1
			  AND id <> $4
			  AND status NOT IN ('cancelled', 'no_show', 'completed')
			  AND scheduled_at < $3
			  AND scheduled_at + (duration_minutes || ' minutes')::interval > $2
		)`, doctorID, start, end, exclude).Scan(&overlap)
	return overlap, err
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	query := `SELECT ` + apptCols + apptJoins + ` WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM appointments a WHERE 1=1`
	var args []interface{}
	idx := 1

	addEq := func(col, val string) {
		query += fmt.Sprintf(` AND a.%s = $%d`, col, idx)
		countQuery += fmt.Sprintf(` AND a.%s = $%d`, col, idx)
		args = append(args, val)
		idx++
	}
	if p, ok := params["patient_id"]; ok {
		addEq("patient_id", p)
	}
	if p, ok := params["doctor_id"]; ok {
		addEq("doctor_id", p)
	}
	if p, ok := params["department_id"]; ok {
		addEq("department_id", p)
	}
	if p, ok := params["status"]; ok {
		addEq("status", p)
	}
	if p, ok := params["date"]; ok {
		query += fmt.Sprintf(` AND a.scheduled_at::date = $%d`, idx)
		countQuery += fmt.Sprintf(` AND a.scheduled_at::date = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY a.scheduled_at ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}
