package identity

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table. PatientNumber is assigned at
// registration and never changes afterwards.
type Patient struct {
	ID                    uuid.UUID `db:"id" json:"id"`
	PatientNumber         string    `db:"patient_number" json:"patient_number"`
	FullName              string    `db:"full_name" json:"full_name"`
	DateOfBirth           time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender                *string   `db:"gender" json:"gender,omitempty"`
	BloodGroup            *string   `db:"blood_group" json:"blood_group,omitempty"`
	Phone                 *string   `db:"phone" json:"phone,omitempty"`
	Email                 *string   `db:"email" json:"email,omitempty"`
	Address               *string   `db:"address" json:"address,omitempty"`
	EmergencyContactName  *string   `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string   `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
	Allergies             *string   `db:"allergies" json:"allergies,omitempty"`
	ChronicConditions     *string   `db:"chronic_conditions" json:"chronic_conditions,omitempty"`
	Age                   int       `db:"-" json:"age"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// Profile maps to the profiles table: one row per staff member.
type Profile struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Email      string    `db:"email" json:"email"`
	FullName   string    `db:"full_name" json:"full_name"`
	Role       string    `db:"role" json:"role"`
	Department *string   `db:"department" json:"department,omitempty"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
