package admission

import (
	"time"

	"github.com/google/uuid"
)

// Admission maps to the admissions table. At most one admission per bed may
// hold status admitted; the partial unique index on the table enforces it.
type Admission struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	PatientID         uuid.UUID  `db:"patient_id" json:"patient_id"`
	BedID             uuid.UUID  `db:"bed_id" json:"bed_id"`
	DepartmentID      uuid.UUID  `db:"department_id" json:"department_id"`
	AdmittingDoctorID uuid.UUID  `db:"admitting_doctor_id" json:"admitting_doctor_id"`
	AdmissionDate     time.Time  `db:"admission_date" json:"admission_date"`
	DischargeDate     *time.Time `db:"discharge_date" json:"discharge_date,omitempty"`
	AdmissionType     string     `db:"admission_type" json:"admission_type"`
	Status            string     `db:"status" json:"status"`
	Diagnosis         *string    `db:"diagnosis" json:"diagnosis,omitempty"`
	TreatmentPlan     *string    `db:"treatment_plan" json:"treatment_plan,omitempty"`
	DischargeSummary  *string    `db:"discharge_summary" json:"discharge_summary,omitempty"`
	TotalCost         *float64   `db:"total_cost" json:"total_cost,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`

	// Populated on reads, not stored.
	PatientName      string `db:"-" json:"patient_name,omitempty"`
	BedNumber        string `db:"-" json:"bed_number,omitempty"`
	DepartmentName   string `db:"-" json:"department_name,omitempty"`
	StayDurationDays int    `db:"-" json:"stay_duration_days"`
}

// BedState is the slice of a bed the admission workflow needs.
type BedState struct {
	ID           uuid.UUID
	DepartmentID uuid.UUID
	Status       string
}

// DischargeRequest carries the paperwork closing an admission.
type DischargeRequest struct {
	DischargeSummary *string  `json:"discharge_summary"`
	TotalCost        *float64 `json:"total_cost"`
	// SendBedToMaintenance routes the freed bed to cleaning instead of
	// straight back into the available pool.
	SendBedToMaintenance bool `json:"send_bed_to_maintenance"`
}
