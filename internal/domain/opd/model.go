package opd

import (
	"time"

	"github.com/google/uuid"
)

// QueueEntry maps to the opd_queues table. One row per patient visit to a
// department on a given day; TokenNumber orders the queue.
type QueueEntry struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	PatientID             uuid.UUID  `db:"patient_id" json:"patient_id"`
	DepartmentID          uuid.UUID  `db:"department_id" json:"department_id"`
	DoctorID              *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	VisitDate             time.Time  `db:"visit_date" json:"visit_date"`
	TokenNumber           int        `db:"token_number" json:"token_number"`
	Priority              string     `db:"priority" json:"priority"`
	Status                string     `db:"status" json:"status"`
	CheckInTime           time.Time  `db:"check_in_time" json:"check_in_time"`
	ConsultationStartTime *time.Time `db:"consultation_start_time" json:"consultation_start_time,omitempty"`
	ConsultationEndTime   *time.Time `db:"consultation_end_time" json:"consultation_end_time,omitempty"`
	Symptoms              *string    `db:"symptoms" json:"symptoms,omitempty"`
	Notes                 *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`

	// Populated on reads, not stored.
	PatientName     string `db:"-" json:"patient_name,omitempty"`
	PatientNumber   string `db:"-" json:"patient_number,omitempty"`
	DepartmentName  string `db:"-" json:"department_name,omitempty"`
	WaitTimeMinutes *int   `db:"-" json:"wait_time_minutes,omitempty"`
}
