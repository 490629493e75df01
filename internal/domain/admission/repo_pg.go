package admission

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

const admissionCols = `a.id, a.patient_id, a.bed_id, a.department_id, a.admitting_doctor_id,
	a.admission_date, a.discharge_date, a.admission_type, a.status,
	a.diagnosis, a.treatment_plan, a.discharge_summary, a.total_cost,
	a.created_at, a.updated_at, p.full_name, b.bed_number, d.name`

const admissionJoins = ` FROM admissions a
	JOIN patients p ON p.id = a.patient_id
	JOIN beds b ON b.id = a.bed_id
	JOIN departments d ON d.id = a.department_id`

func (r *repoPG) scanAdmission(row pgx.Row) (*Admission, error) {
	var a Admission
	err := row.Scan(&a.ID, &a.PatientID, &a.BedID, &a.DepartmentID, &a.AdmittingDoctorID,
		&a.AdmissionDate, &a.DischargeDate, &a.AdmissionType, &a.Status,
		&a.Diagnosis, &a.TreatmentPlan, &a.DischargeSummary, &a.TotalCost,
		&a.CreatedAt, &a.UpdatedAt, &a.PatientName, &a.BedNumber, &a.DepartmentName)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Admission) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO admissions (id, patient_id, bed_id, department_id, admitting_doctor_id,
			admission_date, admission_type, status, diagnosis, treatment_plan)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		a.ID, a.PatientID, a.BedID, a.DepartmentID, a.AdmittingDoctorID,
		a.AdmissionDate, a.AdmissionType, a.Status, a.Diagnosis, a.TreatmentPlan)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return r.scanAdmission(r.conn(ctx).QueryRow(ctx,
		`SELECT `+admissionCols+admissionJoins+` WHERE a.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Admission) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE admissions SET status=$2, discharge_date=$3, diagnosis=$4, treatment_plan=$5,
			discharge_summary=$6, total_cost=$7, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Status, a.DischargeDate, a.Diagnosis, a.TreatmentPlan,
		a.DischargeSummary, a.TotalCost)
	return err
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Admission, int, error) {
	query := `SELECT ` + admissionCols + admissionJoins + ` WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM admissions a WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["patient_id"]; ok {
		query += fmt.Sprintf(` AND a.patient_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND a.patient_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["department_id"]; ok {
		query += fmt.Sprintf(` AND a.department_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND a.department_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND a.status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND a.status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["doctor_id"]; ok {
		query += fmt.Sprintf(` AND a.admitting_doctor_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND a.admitting_doctor_id = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY a.admission_date DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Admission
	for rows.Next() {
		a, err := r.scanAdmission(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}

// =========== Bed Gateway ===========

type bedGatewayPG struct{ pool *pgxpool.Pool }

func NewBedGatewayPG(pool *pgxpool.Pool) BedGateway { return &bedGatewayPG{pool: pool} }

func (g *bedGatewayPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return g.pool
}

func (g *bedGatewayPG) Lock(ctx context.Context, bedID uuid.UUID) (*BedState, error) {
	var b BedState
	err := g.conn(ctx).QueryRow(ctx,
		`SELECT id, department_id, status FROM beds WHERE id = $1 FOR UPDATE`,
		bedID).Scan(&b.ID, &b.DepartmentID, &b.Status)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (g *bedGatewayPG) SetStatus(ctx context.Context, bedID uuid.UUID, status string) error {
	tag, err := g.conn(ctx).Exec(ctx,
		`UPDATE beds SET status=$2, updated_at=NOW() WHERE id = $1`, bedID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
