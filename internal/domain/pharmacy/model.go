package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// Prescription maps to the prescriptions table.
type Prescription struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID    uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	AdmissionID *uuid.UUID `db:"admission_id" json:"admission_id,omitempty"`
	OPDQueueID  *uuid.UUID `db:"opd_queue_id" json:"opd_queue_id,omitempty"`
	Status      string     `db:"status" json:"status"`
	DispensedAt *time.Time `db:"dispensed_at" json:"dispensed_at,omitempty"`
	DispensedBy *uuid.UUID `db:"dispensed_by" json:"dispensed_by,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`

	// Populated on reads, not stored.
	PatientName string              `db:"-" json:"patient_name,omitempty"`
	DoctorName  string              `db:"-" json:"doctor_name,omitempty"`
	Items       []*PrescriptionItem `db:"-" json:"items,omitempty"`
}

// PrescriptionItem maps to the prescription_items table: one line per drug.
type PrescriptionItem struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrescriptionID uuid.UUID `db:"prescription_id" json:"prescription_id"`
	ItemID         uuid.UUID `db:"item_id" json:"item_id"`
	Dosage         string    `db:"dosage" json:"dosage"`
	Frequency      string    `db:"frequency" json:"frequency"`
	Duration       string    `db:"duration" json:"duration"`
	Quantity       int       `db:"quantity" json:"quantity"`
	Instructions   *string   `db:"instructions" json:"instructions,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	ItemName string `db:"-" json:"item_name,omitempty"`
}
