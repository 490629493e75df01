package opd

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

const queueCols = `q.id, q.patient_id, q.department_id, q.doctor_id, q.visit_date, q.token_number,
	q.priority, q.status, q.check_in_time, q.consultation_start_time, q.consultation_end_time,
	q.symptoms, q.notes, q.created_at, p.full_name, p.patient_number, d.name`

const queueJoins = ` FROM opd_queues q
	JOIN patients p ON p.id = q.patient_id
	JOIN departments d ON d.id = q.department_id`

func (r *repoPG) scanEntry(row pgx.Row) (*QueueEntry, error) {
	var q QueueEntry
	err := row.Scan(&q.ID, &q.PatientID, &q.DepartmentID, &q.DoctorID, &q.VisitDate, &q.TokenNumber,
		&q.Priority, &q.Status, &q.CheckInTime, &q.ConsultationStartTime, &q.ConsultationEndTime,
		&q.Symptoms, &q.Notes, &q.CreatedAt, &q.PatientName, &q.PatientNumber, &q.DepartmentName)
	return &q, err
}

func (r *repoPG) Create(ctx context.Context, q *QueueEntry) error {
	q.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO opd_queues (id, patient_id, department_id, doctor_id, visit_date, token_number,
			priority, status, check_in_time, symptoms, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		q.ID, q.PatientID, q.DepartmentID, q.DoctorID, q.VisitDate, q.TokenNumber,
		q.Priority, q.Status, q.CheckInTime, q.Symptoms, q.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*QueueEntry, error) {
	return r.scanEntry(r.conn(ctx).QueryRow(ctx,
		`SELECT `+queueCols+queueJoins+` WHERE q.id = $1`, id))
}

func (r *repoPG) TokensForDay(ctx context.Context, departmentID uuid.UUID, visitDate time.Time) ([]int, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT token_number FROM opd_queues WHERE department_id = $1 AND visit_date = $2`,
		departmentID, visitDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tokens []int
	for rows.Next() {
		var t int
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, q *QueueEntry) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE opd_queues SET status=$2, doctor_id=$3,
			consultation_start_time=$4, consultation_end_time=$5, notes=$6
		WHERE id = $1`,
		q.ID, q.Status, q.DoctorID, q.ConsultationStartTime, q.ConsultationEndTime, q.Notes)
	return err
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*QueueEntry, int, error) {
	query := `SELECT ` + queueCols + queueJoins + ` WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM opd_queues q WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["department_id"]; ok {
		query += fmt.Sprintf(` AND q.department_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND q.department_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["doctor_id"]; ok {
		query += fmt.Sprintf(` AND q.doctor_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND q.doctor_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND q.status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND q.status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["date"]; ok {
		query += fmt.Sprintf(` AND q.visit_date = $%d`, idx)
		countQuery += fmt.Sprintf(` AND q.visit_date = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["patient_id"]; ok {
		query += fmt.Sprintf(` AND q.patient_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND q.patient_id = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY q.token_number ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*QueueEntry
	for rows.Next() {
		q, err := r.scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, q)
	}
	return items, total, nil
}
