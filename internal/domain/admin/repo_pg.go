package admin

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

// =========== Department Repository ===========

type departmentRepoPG struct{ pool *pgxpool.Pool }

func NewDepartmentRepoPG(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepoPG{pool: pool}
}

func (r *departmentRepoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const deptCols = `id, name, description, head_doctor_id, created_at`

func (r *departmentRepoPG) scanDepartment(row pgx.Row) (*Department, error) {
	var d Department
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.HeadDoctorID, &d.CreatedAt)
	return &d, err
}

func (r *departmentRepoPG) Create(ctx context.Context, d *Department) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO departments (id, name, description, head_doctor_id)
		VALUES ($1,$2,$3,$4)`,
		d.ID, d.Name, d.Description, d.HeadDoctorID)
	return err
}

func (r *departmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Department, error) {
	return r.scanDepartment(r.conn(ctx).QueryRow(ctx, `SELECT `+deptCols+` FROM departments WHERE id = $1`, id))
}

func (r *departmentRepoPG) Update(ctx context.Context, d *Department) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE departments SET name=$2, description=$3, head_doctor_id=$4
		WHERE id = $1`,
		d.ID, d.Name, d.Description, d.HeadDoctorID)
	return err
}

func (r *departmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	return err
}

func (r *departmentRepoPG) List(ctx context.Context, limit, offset int) ([]*Department, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM departments`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+deptCols+` FROM departments ORDER BY name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Department
	for rows.Next() {
		d, err := r.scanDepartment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, nil
}

// =========== Bed Repository ===========

type bedRepoPG struct{ pool *pgxpool.Pool }

func NewBedRepoPG(pool *pgxpool.Pool) BedRepository { return &bedRepoPG{pool: pool} }

func (r *bedRepoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const bedCols = `id, bed_number, department_id, bed_type, status, floor_number, room_number, created_at, updated_at`

func (r *bedRepoPG) scanBed(row pgx.Row) (*Bed, error) {
	var b Bed
	err := row.Scan(&b.ID, &b.BedNumber, &b.DepartmentID, &b.BedType, &b.Status,
		&b.FloorNumber, &b.RoomNumber, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *bedRepoPG) Create(ctx context.Context, b *Bed) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO beds (id, bed_number, department_id, bed_type, status, floor_number, room_number)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		b.ID, b.BedNumber, b.DepartmentID, b.BedType, b.Status, b.FloorNumber, b.RoomNumber)
	return err
}

func (r *bedRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Bed, error) {
	return r.scanBed(r.conn(ctx).QueryRow(ctx, `SELECT `+bedCols+` FROM beds WHERE id = $1`, id))
}

func (r *bedRepoPG) Update(ctx context.Context, b *Bed) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE beds SET bed_number=$2, bed_type=$3, floor_number=$4, room_number=$5, updated_at=NOW()
		WHERE id = $1`,
		b.ID, b.BedNumber, b.BedType, b.FloorNumber, b.RoomNumber)
	return err
}

func (r *bedRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE beds SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *bedRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM beds WHERE id = $1`, id)
	return err
}

func (r *bedRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Bed, int, error) {
	query := `SELECT ` + bedCols + ` FROM beds WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM beds WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["department_id"]; ok {
		query += fmt.Sprintf(` AND department_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND department_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["bed_type"]; ok {
		query += fmt.Sprintf(` AND bed_type = $%d`, idx)
		countQuery += fmt.Sprintf(` AND bed_type = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY bed_number ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Bed
	for rows.Next() {
		b, err := r.scanBed(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, nil
}

func (r *bedRepoPG) HasActiveAdmission(ctx context.Context, bedID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM admissions WHERE bed_id = $1 AND status = 'admitted')`,
		bedID).Scan(&exists)
	return exists, err
}

func (r *bedRepoPG) OccupancyByDepartment(ctx context.Context) ([]*DepartmentOccupancy, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT d.id, d.name,
			COUNT(b.id) AS total_beds,
			COUNT(b.id) FILTER (WHERE b.status = 'occupied') AS occupied_beds
		FROM departments d
		LEFT JOIN beds b ON b.department_id = d.id
		GROUP BY d.id, d.name
		ORDER BY d.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*DepartmentOccupancy
	for rows.Next() {
		var o DepartmentOccupancy
		if err := rows.Scan(&o.DepartmentID, &o.DepartmentName, &o.TotalBeds, &o.OccupiedBeds); err != nil {
			return nil, err
		}
		items = append(items, &o)
	}
	return items, nil
}
